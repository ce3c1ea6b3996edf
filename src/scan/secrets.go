// Package scan checks staged build contexts for leaked secrets before an
// image is built from them.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// Finding is a single secret hit in a staged file.
type Finding struct {
	Path        string
	Line        int
	RuleID      string
	Description string
}

// Scanner detects secrets in directories using the default gitleaks rules.
type Scanner struct {
	detector *detect.Detector
}

// NewScanner creates a scanner with the default rule set.
func NewScanner() (*Scanner, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &Scanner{detector: d}, nil
}

// Dir scans every regular file under dir and returns the findings.
func (s *Scanner) Dir(dir string) ([]Finding, error) {
	var findings []Finding

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		for _, hit := range s.detector.DetectBytes(data) {
			findings = append(findings, Finding{
				Path:        rel,
				Line:        hit.StartLine + 1, // gitleaks is 0-indexed
				RuleID:      hit.RuleID,
				Description: hit.Description,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// Summarize renders findings as one line per hit, for error messages.
func Summarize(findings []Finding) string {
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("%s:%d: %s (%s)", f.Path, f.Line, f.Description, f.RuleID))
	}
	return strings.Join(lines, "\n")
}
