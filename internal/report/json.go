// Package report turns assembled analysis results into artifacts for
// external consumers: JSON snapshots, summary tables, and HTML charts.
// It only reads results; it never mutates them.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mtanaka-dev/pr-analytics/internal/domain"
)

const timestampLayout = "20060102_150405"

// WriteJSON writes the complete result snapshot as pretty-printed JSON to
// a timestamped file under dir and returns the file path.
func WriteJSON(result domain.AnalysisResult, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	name := fmt.Sprintf("pr_analysis_%s.json", time.Now().UTC().Format(timestampLayout))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
