package codescan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// defaultExcludes are directory names skipped during a scan.
var defaultExcludes = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"__pycache__":  true,
}

// maxFileSize caps how large a source file the scanner will parse.
const maxFileSize = 1 << 20 // 1 MiB

// ScanDir walks a repository tree, parses every supported source file, and
// returns the reports in walk order. Unparseable files are skipped with a
// warning entry rather than failing the scan: forensic probes must see as
// much of the tree as possible even when parts of it are broken.
func ScanDir(ctx context.Context, parser Parser, root string) ([]FileReport, []string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("codescan: cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("codescan: %s is not a directory", root)
	}

	var (
		reports  []FileReport
		warnings []string
	)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if defaultExcludes[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := DetectLanguage(path)
		if !ok {
			return nil
		}
		fi, err := d.Info()
		if err != nil || fi.Size() > maxFileSize {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("read %s: %v", path, err))
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		report, err := parser.Parse(ctx, rel, source, lang)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("parse %s: %v", rel, err))
			return nil
		}
		reports = append(reports, *report)
		return nil
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("codescan: walk %s: %w", root, err)
	}

	return reports, warnings, nil
}
