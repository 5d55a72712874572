// Package chart renders price-series figures with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	ErrNoData               = errors.New("chart: no plottable values")
	ErrPercentChangeMissing = errors.New("chart: percent change not computed")
)

// Style is the theme applied to a figure. The zero value is not usable; start
// from DefaultStyle.
type Style struct {
	Color    color.Color
	Grid     bool
	Width    vg.Length
	Height   vg.Length
	FontSize vg.Length
}

// DefaultStyle is green on a grid at 10x6 inches.
func DefaultStyle() Style {
	return Style{
		Color:    color.RGBA{R: 0x00, G: 0x80, B: 0x00, A: 0xff},
		Grid:     true,
		Width:    10 * vg.Inch,
		Height:   6 * vg.Inch,
		FontSize: vg.Points(12),
	}
}

// NewStyle builds a Style from config values. Empty or zero values keep the default.
func NewStyle(hex string, grid bool, widthIn, heightIn, fontSize float64) (Style, error) {
	s := DefaultStyle()
	s.Grid = grid
	if hex != "" {
		c, err := ParseColor(hex)
		if err != nil {
			return s, err
		}
		s.Color = c
	}
	if widthIn > 0 {
		s.Width = vg.Length(widthIn) * vg.Inch
	}
	if heightIn > 0 {
		s.Height = vg.Length(heightIn) * vg.Inch
	}
	if fontSize > 0 {
		s.FontSize = vg.Points(fontSize)
	}
	return s, nil
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(hex string) (color.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return nil, fmt.Errorf("invalid color %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func (s Style) apply(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = s.FontSize + 2
	p.X.Label.TextStyle.Font.Size = s.FontSize
	p.Y.Label.TextStyle.Font.Size = s.FontSize
	p.X.Tick.Label.Font.Size = s.FontSize - 2
	p.Y.Tick.Label.Font.Size = s.FontSize - 2
	p.Legend.TextStyle.Font.Size = s.FontSize
	if s.Grid {
		p.Add(plotter.NewGrid())
	}
}

// Save writes p to path. The format follows the extension (png, svg, pdf, ...).
func Save(p *plot.Plot, style Style, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	if err := p.Save(style.Width, style.Height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}
