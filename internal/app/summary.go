package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fleetops/deploypick/internal/workflow"
)

// writeRunSummary appends a markdown record of the run to the configured
// summary file, for teams that keep a deploy log.
func (r *Runner) writeRunSummary(result workflow.Result) error {
	path := strings.TrimSpace(r.cfg.SummaryPath)
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return fmt.Errorf("create summary directory: %w", mkErr)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run summary: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close run summary file: %v\n", closeErr)
		}
	}()

	if _, err := file.WriteString(renderRunSummary(result, time.Now())); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}

	return nil
}

func renderRunSummary(result workflow.Result, at time.Time) string {
	var builder strings.Builder

	builder.WriteString("## Deploy run summary\n\n")
	builder.WriteString(fmt.Sprintf("- Date: %s\n", at.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("- Branch: %s\n", result.Branch))
	builder.WriteString(fmt.Sprintf("- Commits applied: %d\n", result.CommitsApplied))

	if result.Pushed {
		builder.WriteString("- Pushed: yes\n")
	} else {
		builder.WriteString("- Pushed: no (nothing staged)\n")
	}

	builder.WriteString("\n")
	return builder.String()
}
