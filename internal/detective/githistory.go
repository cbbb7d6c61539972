package detective

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProgressionPattern classifies a commit history.
type ProgressionPattern string

const (
	PatternProgression ProgressionPattern = "setup-to-tools-to-orchestration"
	PatternBulkUpload  ProgressionPattern = "bulk-upload"
	PatternMixed       ProgressionPattern = "mixed"
)

// bulkUploadGap is the mean inter-commit gap (seconds) below which a history
// is treated as a bulk upload regardless of its messages.
const bulkUploadGap = 300

// maxHistoryCommits bounds how much history is read for classification.
const maxHistoryCommits = 20

// Commit is one entry of the audited repository's history.
type Commit struct {
	Hash    string `json:"hash"`
	Unix    int64  `json:"unix"`
	Subject string `json:"subject"`
}

// GitHistory is the forensic summary of a repository's commit log.
type GitHistory struct {
	TotalCommits int                `json:"totalCommits"`
	Commits      []Commit           `json:"commits"` // oldest first, capped
	Pattern      ProgressionPattern `json:"pattern"`
	BulkUpload   bool               `json:"bulkUpload"`
	FirstCommit  string             `json:"firstCommit,omitempty"`
	LastCommit   string             `json:"lastCommit,omitempty"`
}

// HasProgression reports whether the history shows iterative development.
func (h GitHistory) HasProgression() bool {
	return h.Pattern == PatternProgression && !h.BulkUpload
}

// readGitHistory runs git log in the repository and classifies the result.
func readGitHistory(ctx context.Context, repoPath string) (*GitHistory, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath,
		"log", "--reverse", "--format=%h%x09%ct%x09%s")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log in %s: %w", repoPath, err)
	}
	commits, err := parseGitLog(string(out))
	if err != nil {
		return nil, err
	}
	h := classifyHistory(commits)
	return &h, nil
}

// parseGitLog parses "hash<TAB>unix<TAB>subject" lines, oldest first.
func parseGitLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			return nil, fmt.Errorf("git log: malformed line %q", line)
		}
		unix, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("git log: bad timestamp in %q: %w", line, err)
		}
		commits = append(commits, Commit{Hash: parts[0], Unix: unix, Subject: parts[2]})
	}
	return commits, nil
}

// Keyword groups used to recognize a setup → tooling → orchestration arc.
var (
	setupKeywords = []string{"setup", "init", "initial", "bootstrap", "scaffold", "env"}
	toolKeywords  = []string{"tool", "parser", "probe", "collector", "detective", "git", "ast"}
	orchKeywords  = []string{"graph", "orchestrat", "pipeline", "scheduler", "node", "edge", "parallel", "fan"}
)

// classifyHistory is a pure function over parsed commits: it detects the
// progression arc from commit subjects and flags timestamp clustering that
// indicates the history was uploaded in one sitting.
func classifyHistory(commits []Commit) GitHistory {
	h := GitHistory{TotalCommits: len(commits)}
	if len(commits) == 0 {
		h.Pattern = PatternBulkUpload
		return h
	}

	capped := commits
	if len(capped) > maxHistoryCommits {
		capped = capped[:maxHistoryCommits]
	}
	h.Commits = capped
	h.FirstCommit = commits[0].Hash
	h.LastCommit = commits[len(commits)-1].Hash

	var subjects strings.Builder
	for _, c := range capped {
		subjects.WriteString(strings.ToLower(c.Subject))
		subjects.WriteByte(' ')
	}
	text := subjects.String()

	switch {
	case containsAny(text, setupKeywords) && containsAny(text, toolKeywords) && containsAny(text, orchKeywords):
		h.Pattern = PatternProgression
	case len(commits) < 3:
		h.Pattern = PatternBulkUpload
	default:
		h.Pattern = PatternMixed
	}

	if len(capped) > 1 {
		var total int64
		for i := 1; i < len(capped); i++ {
			total += capped[i].Unix - capped[i-1].Unix
		}
		h.BulkUpload = total/int64(len(capped)-1) < bulkUploadGap
	}
	return h
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
