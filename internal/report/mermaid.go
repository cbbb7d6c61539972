package report

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/tribunal/internal/verdict"
	"github.com/dusk-indust/tribunal/internal/workflow"
)

// PipelineDiagram produces a Mermaid graph TD of the fan-out/fan-in pipeline
// that ran the audit. Judge nodes that only produced degraded opinions are
// drawn dashed.
func PipelineDiagram(rep *verdict.Report) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TD\n")

	sb.WriteString("  S[\"State\"]\n")
	sb.WriteString("  subgraph collection [\"Evidence Collection\"]\n")
	collectors := collectorNames(rep)
	for i, name := range collectors {
		fmt.Fprintf(&sb, "    C%d[\"%s\"]\n", i, name)
	}
	sb.WriteString("  end\n")

	sb.WriteString("  E[\"Evidence Store\"]\n")
	sb.WriteString("  subgraph review [\"Judicial Review\"]\n")
	for i, p := range workflow.Personas {
		if judgeDegraded(rep, p) {
			fmt.Fprintf(&sb, "    J%d[\"judge-%s (degraded)\"]:::degraded\n", i, p)
		} else {
			fmt.Fprintf(&sb, "    J%d[\"judge-%s\"]\n", i, p)
		}
	}
	sb.WriteString("  end\n")
	sb.WriteString("  V[\"Synthesis\"]\n")

	for i := range collectors {
		fmt.Fprintf(&sb, "  S --> C%d\n", i)
		fmt.Fprintf(&sb, "  C%d --> E\n", i)
	}
	for i := range workflow.Personas {
		fmt.Fprintf(&sb, "  E --> J%d\n", i)
		fmt.Fprintf(&sb, "  J%d --> V\n", i)
	}

	sb.WriteString("  classDef degraded stroke-dasharray: 5 5\n")
	sb.WriteString("```\n")
	return sb.String()
}

// collectorNames derives the collectors that ran from the evidence the
// verdicts cite, in first-seen order.
func collectorNames(rep *verdict.Report) []string {
	seen := map[string]bool{}
	var names []string
	for _, v := range rep.Verdicts {
		for _, o := range v.Opinions {
			for _, id := range o.CitedEvidence {
				// Evidence IDs are criterion/source@location.
				rest := id
				if i := strings.Index(rest, "/"); i >= 0 {
					rest = rest[i+1:]
				}
				source := rest
				if i := strings.Index(rest, "@"); i >= 0 {
					source = rest[:i]
				}
				if source != "" && !seen[source] {
					seen[source] = true
					names = append(names, source)
				}
			}
		}
	}
	if len(names) == 0 {
		names = []string{"repo-investigator", "doc-analyst", "cross-examiner"}
	}
	return names
}

// judgeDegraded reports whether every opinion this persona produced for the
// run came from failure compensation.
func judgeDegraded(rep *verdict.Report, p workflow.Persona) bool {
	any := false
	for _, v := range rep.Verdicts {
		for _, o := range v.Opinions {
			if o.Persona != p {
				continue
			}
			any = true
			if !o.Degraded {
				return false
			}
		}
	}
	return any
}
