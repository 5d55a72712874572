package recorder

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// SeriesHeader is the column order of an exported price series.
var SeriesHeader = []string{
	"date", "open", "high", "low", "close", "adj_close", "volume",
	"change", "instant_return", "percent_change",
}

// WriteSeriesCSV writes series as CSV. Absent derived values are empty cells.
func WriteSeriesCSV(w io.Writer, series *model.PriceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SeriesHeader); err != nil {
		return err
	}
	for _, r := range series.Rows {
		rec := []string{
			r.Date.Format(model.DateLayout),
			formatFloat(r.Open), formatFloat(r.High), formatFloat(r.Low),
			formatFloat(r.Close), formatFloat(r.AdjClose), formatFloat(r.Volume),
			formatNull(r.Change), formatNull(r.InstantReturn), formatNull(r.PercentChange),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveSeriesCSV writes series to path, replacing any existing file.
func SaveSeriesCSV(path string, series *model.PriceSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSeriesCSV(f, series); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNull(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64)
}
