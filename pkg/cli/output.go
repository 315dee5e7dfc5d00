package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"switchyard-ai/switchyard/pkg/health"
	"switchyard-ai/switchyard/pkg/health/history"
	"switchyard-ai/switchyard/pkg/providers"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText is the human-readable default.
	FormatText OutputFormat = "text"
	// FormatJSON renders the raw structures, for scripting.
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a format flag value. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, json)", s)
	}
}

// WriteJSON renders v as indented JSON, trailing newline included.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// RenderHealth writes the aggregate health picture as an aligned table,
// one provider per row sorted by name, followed by the overall verdict
// and any operator recommendations.
func RenderHealth(w io.Writer, sys *health.SystemHealth) error {
	names := make([]string, 0, len(sys.Providers))
	for name := range sys.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tSTATUS\tLATENCY\tUPTIME\tERROR")
	for _, name := range names {
		record := sys.Providers[name]
		latency := "-"
		if record.Status != health.StatusOffline {
			latency = fmt.Sprintf("%dms", record.ResponseTime)
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%.1f%%\t%s\n",
			name,
			statusGlyph(record.Status), record.Status,
			latency,
			record.Uptime*100,
			record.Error,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\noverall: %s %s\n", statusGlyph(sys.Overall), sys.Overall); err != nil {
		return err
	}
	for _, rec := range sys.Recommendations {
		if _, err := fmt.Fprintf(w, "  [%s] %s\n", rec.Level, rec.Message); err != nil {
			return err
		}
	}
	return nil
}

// RenderModels writes the aggregated model catalog as an aligned table,
// sorted by provider then model name.
func RenderModels(w io.Writer, models []providers.ModelInfo) error {
	if len(models) == 0 {
		_, err := fmt.Fprintln(w, "no models available")
		return err
	}

	sorted := make([]providers.ModelInfo, len(models))
	copy(sorted, models)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Provider != sorted[j].Provider {
			return sorted[i].Provider < sorted[j].Provider
		}
		return sorted[i].Name < sorted[j].Name
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tMODEL\tDESCRIPTION")
	for _, m := range sorted {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Provider, m.Name, m.Description)
	}
	return tw.Flush()
}

// RenderHistory writes persisted health checks as an aligned table,
// keeping the order the rows arrive in (the store returns newest
// first).
func RenderHistory(w io.Writer, rows []history.CheckRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no recorded checks")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECKED\tPROVIDER\tSTATUS\tLATENCY\tERROR")
	for _, row := range rows {
		latency := "-"
		if row.Status != health.StatusOffline {
			latency = fmt.Sprintf("%dms", row.ResponseMS)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\n",
			row.CheckedAt.Local().Format("2006-01-02 15:04:05"),
			row.Provider,
			statusGlyph(row.Status), row.Status,
			latency,
			row.Error,
		)
	}
	return tw.Flush()
}

// RenderReview writes a code review verdict: the summary, each issue
// with its severity and line, and the suggested improvements.
func RenderReview(w io.Writer, result *providers.ReviewResult) error {
	if result.Summary != "" {
		if _, err := fmt.Fprintf(w, "%s\n", result.Summary); err != nil {
			return err
		}
	}

	if len(result.Issues) > 0 {
		if _, err := fmt.Fprintf(w, "\nissues (%d):\n", len(result.Issues)); err != nil {
			return err
		}
		for _, issue := range result.Issues {
			line := ""
			if issue.Line > 0 {
				line = fmt.Sprintf(" (line %d)", issue.Line)
			}
			if _, err := fmt.Fprintf(w, "  %s %s%s: %s\n", severityGlyph(issue.Severity), issue.Severity, line, issue.Message); err != nil {
				return err
			}
		}
	}

	if len(result.Improvements) > 0 {
		if _, err := fmt.Fprintln(w, "\nimprovements:"); err != nil {
			return err
		}
		for _, improvement := range result.Improvements {
			if _, err := fmt.Fprintf(w, "  - %s\n", improvement); err != nil {
				return err
			}
		}
	}
	return nil
}

// severityGlyph maps a review severity onto a one-character marker.
func severityGlyph(severity string) string {
	switch severity {
	case "error":
		return "✗"
	case "warning":
		return "~"
	default:
		return "•"
	}
}

// statusGlyph maps a health status onto a one-character marker for
// table rows.
func statusGlyph(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return "✓"
	case health.StatusDegraded:
		return "~"
	case health.StatusCritical:
		return "!"
	case health.StatusOffline:
		return "✗"
	default:
		return "?"
	}
}
