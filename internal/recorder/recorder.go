package recorder

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"StockScope/internal/model"
)

// Recorder persists scraped ranking rows.
type Recorder interface {
	RecordRanking(row *model.RankingRow) error
	Close() error
}

// Header is the column order used by file sinks.
var Header = []string{"number", "company", "symbol", "ytd_return"}

// Open selects a recorder by file extension. An empty path gives a NoopRecorder.
// runID tags rows in the SQLite sink and is ignored by file sinks.
func Open(path, runID string) (Recorder, error) {
	if path == "" {
		return NewNoopRecorder(), nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jl", ".jsonl":
		return NewJSONLinesRecorder(path)
	case ".json":
		return NewJSONArrayRecorder(path)
	case ".csv":
		return NewCSVRecorder(path)
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteRecorder(path, runID)
	default:
		return nil, fmt.Errorf("unsupported output format %q", ext)
	}
}

// MultiRecorder fans every row out to all recorders.
type MultiRecorder struct {
	recorders []Recorder
}

func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

func (m *MultiRecorder) RecordRanking(row *model.RankingRow) error {
	for _, r := range m.recorders {
		if err := r.RecordRanking(row); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
