package recorder

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"StockScope/internal/model"
)

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// JSONLinesRecorder appends one JSON object per row. Absent fields are null.
type JSONLinesRecorder struct {
	mu   sync.Mutex
	c    io.Closer
	enc  *json.Encoder
	path string
}

func NewJSONLinesRecorder(path string) (*JSONLinesRecorder, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("json lines recorder opened", zap.String("path", path))
	return &JSONLinesRecorder{c: f, enc: json.NewEncoder(f), path: path}, nil
}

// NewJSONLinesWriter writes rows to w. Close does not close w.
func NewJSONLinesWriter(w io.Writer) *JSONLinesRecorder {
	return &JSONLinesRecorder{enc: json.NewEncoder(w), path: "stream"}
}

func (r *JSONLinesRecorder) RecordRanking(row *model.RankingRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(row); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

func (r *JSONLinesRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// JSONArrayRecorder writes all rows of a run as one JSON array, replacing the
// file. The array is closed by Close.
type JSONArrayRecorder struct {
	mu   sync.Mutex
	f    *os.File
	n    int
	path string
}

func NewJSONArrayRecorder(path string) (*JSONArrayRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.WriteString("["); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	zap.L().Debug("json array recorder opened", zap.String("path", path))
	return &JSONArrayRecorder{f: f, path: path}, nil
}

func (r *JSONArrayRecorder) RecordRanking(row *model.RankingRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	sep := "\n"
	if r.n > 0 {
		sep = ",\n"
	}
	if _, err := r.f.WriteString(sep); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	if _, err := r.f.Write(b); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	r.n++
	return nil
}

func (r *JSONArrayRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.f.WriteString("\n]\n"); err != nil {
		r.f.Close()
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return r.f.Close()
}

// CSVRecorder appends rows to a CSV file, writing the header when the file is new.
// Absent fields are written as empty cells.
type CSVRecorder struct {
	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
	path string
}

func NewCSVRecorder(path string) (*CSVRecorder, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	r := &CSVRecorder{f: f, w: csv.NewWriter(f), path: path}
	if info.Size() == 0 {
		if err := r.w.Write(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	zap.L().Debug("csv recorder opened", zap.String("path", path))
	return r, nil
}

func (r *CSVRecorder) RecordRanking(row *model.RankingRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Write(row.Fields()); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return fmt.Errorf("flush %s: %w", r.path, err)
	}
	return r.f.Close()
}
