package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Writer lays experiment CSVs out under a timestamped subdirectory.
type Writer struct {
	baseDir string
}

func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Writer{baseDir: baseDir}, nil
}

// Dir returns the directory the writer creates files in.
func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteDecisions(records []DecisionMetric) error {
	f, err := os.Create(filepath.Join(w.baseDir, "decisions.csv"))
	if err != nil {
		return fmt.Errorf("failed to create decisions file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"round", "trick", "seat", "card", "worlds", "failed_worlds",
		"episodes", "duration", "cancelled", "degraded"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write decisions header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Round),
			strconv.Itoa(r.Trick),
			strconv.Itoa(r.Seat),
			r.Card,
			strconv.Itoa(r.Worlds),
			strconv.Itoa(r.FailedWorlds),
			strconv.Itoa(r.Episodes),
			r.Duration.String(),
			strconv.FormatBool(r.Cancelled),
			strconv.FormatBool(r.Degraded),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write decision row: %w", err)
		}
	}
	return nil
}

func (w *Writer) WriteRounds(records []RoundMetric) error {
	f, err := os.Create(filepath.Join(w.baseDir, "rounds.csv"))
	if err != nil {
		return fmt.Errorf("failed to create rounds file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"round", "score0", "score1", "score2", "score3", "duration"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write rounds header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Round),
			strconv.FormatFloat(r.Scores[0], 'f', -1, 64),
			strconv.FormatFloat(r.Scores[1], 'f', -1, 64),
			strconv.FormatFloat(r.Scores[2], 'f', -1, 64),
			strconv.FormatFloat(r.Scores[3], 'f', -1, 64),
			r.Duration.String(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write round row: %w", err)
		}
	}
	return nil
}
