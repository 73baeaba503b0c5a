package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// Exporter handles exporting metrics to various formats
type Exporter struct {
	collector *Collector
}

// NewExporter creates a new metrics exporter
func NewExporter(collector *Collector) *Exporter {
	return &Exporter{collector: collector}
}

// ExportJSON writes stats and recent events to a JSON file
func (e *Exporter) ExportJSON(path string) error {
	report := struct {
		GeneratedAt time.Time         `json:"generated_at"`
		Stats       AggregateStats    `json:"stats"`
		Events      []ActivationEvent `json:"events"`
	}{
		GeneratedAt: time.Now(),
		Stats:       e.collector.GetStats(),
		Events:      e.collector.GetRecentEvents(1000),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// WriteReport writes a human-readable report to the given writer
func (e *Exporter) WriteReport(w io.Writer) error {
	stats := e.collector.GetStats()

	fmt.Fprintf(w, "tabset activation report\n")
	fmt.Fprintf(w, "Window: %s to %s\n\n",
		stats.WindowStart.Format(time.RFC3339),
		stats.WindowEnd.Format(time.RFC3339))

	fmt.Fprintf(w, "=== Summary ===\n")
	fmt.Fprintf(w, "Activations:  %d\n", stats.TotalActivations)
	fmt.Fprintf(w, "Switches:     %d\n", stats.Switches)
	fmt.Fprintf(w, "Unmatched:    %d (%.1f%%)\n\n",
		stats.Unmatched,
		safePercent(float64(stats.Unmatched), float64(stats.TotalActivations)))

	fmt.Fprintf(w, "=== Latency ===\n")
	fmt.Fprintf(w, "Average:  %.0fus\n", stats.AvgDurationUs)
	fmt.Fprintf(w, "P50:      %.0fus\n", stats.P50DurationUs)
	fmt.Fprintf(w, "P95:      %.0fus\n", stats.P95DurationUs)
	fmt.Fprintf(w, "Max:      %.0fus\n\n", stats.MaxDurationUs)

	if len(stats.ByGroup) > 0 {
		fmt.Fprintf(w, "=== By Group ===\n")
		groups := make([]string, 0, len(stats.ByGroup))
		for g := range stats.ByGroup {
			groups = append(groups, g)
		}
		slices.Sort(groups)
		for _, g := range groups {
			name := g
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(w, "%-16s %d\n", name, stats.ByGroup[g].Count)
		}
	}

	return nil
}

// WriteCSV writes events in CSV format for external analysis
func (e *Exporter) WriteCSV(w io.Writer) error {
	events := e.collector.GetRecentEvents(e.collector.maxEvents)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "timestamp", "source", "from", "group", "matched", "panels", "controls", "focus", "duration_us"}); err != nil {
		return err
	}
	for _, ev := range events {
		record := []string{
			ev.ID,
			ev.Timestamp.Format(time.RFC3339),
			ev.Source,
			ev.From,
			ev.Group,
			strconv.FormatBool(ev.Matched),
			strconv.Itoa(ev.Panels),
			strconv.Itoa(ev.Controls),
			ev.Focus,
			strconv.FormatInt(ev.Duration.Microseconds(), 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func safePercent(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return (numerator / denominator) * 100
}
