package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"vaultsim/types"
)

// WriteTimelineCSVFile writes the fired-rule timeline to a CSV file.
func WriteTimelineCSVFile(path string, timeline []types.TimelineEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create timeline file: %w", err)
	}
	defer f.Close()

	return writeTimelineCSV(f, timeline)
}

// writeTimelineCSV writes the timeline to any io.Writer as CSV.
// You can pass os.Stdout for debugging, or a file.
func writeTimelineCSV(w io.Writer, timeline []types.TimelineEvent) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"timestamp", // RFC3339
		"rule_id",
		"rule_name",
		"action",
		"value_before",
		"value_after",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, event := range timeline {
		record := []string{
			event.Timestamp.Format(time.RFC3339),
			event.RuleID,
			event.RuleName,
			event.Action,
			event.ValueBefore.String(),
			event.ValueAfter.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteValueHistoryCSVFile writes the portfolio value series to a CSV
// file.
func WriteValueHistoryCSVFile(path string, history []types.ValuePoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create value history file: %w", err)
	}
	defer f.Close()

	return writeValueHistoryCSV(f, history)
}

func writeValueHistoryCSV(w io.Writer, history []types.ValuePoint) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"timestamp", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, point := range history {
		record := []string{
			point.Timestamp.Format(time.RFC3339),
			point.Value.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
