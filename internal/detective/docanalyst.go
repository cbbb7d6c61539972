package detective

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dusk-indust/tribunal/internal/rubric"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

var _ workflow.TaskUnit = (*DocAnalyst)(nil)

// Chunking bounds for report text. Overlap keeps a concept and its
// supporting discussion in at least one common chunk.
const (
	chunkWords   = 500
	chunkOverlap = 50
)

// conceptDepth classifies how thoroughly the report treats a concept.
type conceptDepth string

const (
	depthAbsent  conceptDepth = "absent"
	depthShallow conceptDepth = "shallow"
	depthDeep    conceptDepth = "deep"
)

// concept pairs a name's surface terms with the deeper-discussion markers
// that distinguish real treatment from a drive-by mention.
type concept struct {
	Name  string
	Terms []string
	Depth []string
}

// concepts is the lexicon the analyst checks the report against.
var concepts = []concept{
	{
		Name:  "dialectical synthesis",
		Terms: []string{"dialectic", "thesis", "antithesis", "synthesis"},
		Depth: []string{"conflict", "resolution", "opposing", "reconcil", "tension"},
	},
	{
		Name:  "fan-out orchestration",
		Terms: []string{"fan-out", "fan out", "parallel", "concurren"},
		Depth: []string{"barrier", "fan-in", "merge", "join", "isolation", "race"},
	},
	{
		Name:  "metacognition",
		Terms: []string{"metacognit", "self-assess", "self-reflect", "introspect"},
		Depth: []string{"limitation", "uncertain", "confidence", "bias", "blind spot"},
	},
	{
		Name:  "graceful degradation",
		Terms: []string{"degrad", "compensat", "fallback", "fault toleran"},
		Depth: []string{"partial", "placeholder", "recover", "resilien"},
	},
}

// DocAnalyst is the collector for report-artifact criteria that concern the
// report's substance rather than its factual claims about the repository.
type DocAnalyst struct {
	rubric *rubric.Rubric
}

func NewDocAnalyst(r *rubric.Rubric) *DocAnalyst {
	return &DocAnalyst{rubric: r}
}

func (d *DocAnalyst) Name() string          { return sourceDocAnalyst }
func (d *DocAnalyst) Stage() workflow.Stage { return workflow.StageCollection }

func (d *DocAnalyst) criteria() []rubric.Criterion {
	var out []rubric.Criterion
	for _, c := range d.rubric.ByArtifact(rubric.ArtifactReport) {
		if c.Probe != "path-accuracy" {
			out = append(out, c)
		}
	}
	return out
}

func (d *DocAnalyst) Execute(_ context.Context, snap workflow.Snapshot) (*workflow.PartialResult, error) {
	criteria := d.criteria()
	if len(criteria) == 0 {
		return &workflow.PartialResult{}, nil
	}
	if snap.Target.ReportPath == "" {
		return nil, fmt.Errorf("detective: no report path configured")
	}
	data, err := os.ReadFile(snap.Target.ReportPath)
	if err != nil {
		return nil, fmt.Errorf("detective: read report: %w", err)
	}

	chunks := chunkText(string(data), chunkWords, chunkOverlap)
	partial := &workflow.PartialResult{
		Evidence: make(map[string][]workflow.Evidence, len(criteria)),
		Meta: map[string]string{
			"report:chunks": fmt.Sprintf("%d", len(chunks)),
		},
	}
	for _, c := range criteria {
		partial.Evidence[c.ID] = d.assess(c, chunks)
	}
	return partial, nil
}

// assess produces one record per lexicon concept plus, when the criterion
// carries its own patterns, a pattern sweep over the full text.
func (d *DocAnalyst) assess(c rubric.Criterion, chunks []string) []workflow.Evidence {
	var records []workflow.Evidence
	for _, concept := range concepts {
		depth, loc := assessConcept(concept, chunks)
		switch depth {
		case depthDeep:
			records = append(records, finding(c, sourceDocAnalyst, true, 0.85,
				loc, concept.Name, "concept is discussed with supporting depth markers"))
		case depthShallow:
			records = append(records, finding(c, sourceDocAnalyst, false, 0.6,
				loc, concept.Name, "concept is name-dropped without substantive discussion"))
		case depthAbsent:
			records = append(records, finding(c, sourceDocAnalyst, false, 0.7,
				"report", concept.Name, "concept never appears in the report"))
		}
	}
	return records
}

// assessConcept scans chunks for a concept's terms and depth markers. The
// location names the first chunk that mentions the concept.
func assessConcept(con concept, chunks []string) (conceptDepth, string) {
	depth := depthAbsent
	loc := "report"
	for i, chunk := range chunks {
		lower := strings.ToLower(chunk)
		if !containsAny(lower, con.Terms) {
			continue
		}
		if depth == depthAbsent {
			depth = depthShallow
			loc = fmt.Sprintf("report#chunk-%d", i)
		}
		if containsAny(lower, con.Depth) {
			return depthDeep, fmt.Sprintf("report#chunk-%d", i)
		}
	}
	return depth, loc
}

// chunkText splits text into overlapping word windows. The final partial
// window is kept so trailing content is never dropped.
func chunkText(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= overlap {
		return []string{strings.Join(words, " ")}
	}
	var chunks []string
	for start := 0; start < len(words); start += size - overlap {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

func (d *DocAnalyst) Compensate(_ workflow.Snapshot, cause error) *workflow.CompensatedResult {
	return compensate(sourceDocAnalyst, d.criteria(), cause)
}
