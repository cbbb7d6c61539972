package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/tribunal/internal/verdict"
)

// RenderJSON marshals the report with stable indentation for diffing.
func RenderJSON(rep *verdict.Report) ([]byte, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: marshal: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFiles writes the markdown report and its JSON twin next to each
// other under dir, named by run ID. It returns the markdown path.
func WriteFiles(rep *verdict.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: mkdir %s: %w", dir, err)
	}

	mdPath := filepath.Join(dir, "verdict_"+rep.RunID+".md")
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(rep)), 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", mdPath, err)
	}

	data, err := RenderJSON(rep)
	if err != nil {
		return "", err
	}
	jsonPath := filepath.Join(dir, "verdict_"+rep.RunID+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", jsonPath, err)
	}
	return mdPath, nil
}
