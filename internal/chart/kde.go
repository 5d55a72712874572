package chart

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot/plotter"
)

const kdePoints = 200

// scottBandwidth is std * n^(-1/5).
func scottBandwidth(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil) * math.Pow(float64(len(values)), -0.2)
}

// kde evaluates a Gaussian kernel density estimate over the value range padded
// by three bandwidths. Densities are multiplied by scale. Returns nil when the
// bandwidth is zero.
func kde(values []float64, scale float64) plotter.XYs {
	bw := scottBandwidth(values)
	if bw == 0 || math.IsNaN(bw) {
		return nil
	}
	lo := floats.Min(values) - 3*bw
	hi := floats.Max(values) + 3*bw
	step := (hi - lo) / float64(kdePoints-1)

	kernel := distuv.Normal{Mu: 0, Sigma: bw}
	n := float64(len(values))
	xys := make(plotter.XYs, kdePoints)
	for i := range xys {
		x := lo + float64(i)*step
		sum := 0.0
		for _, v := range values {
			sum += kernel.Prob(x - v)
		}
		xys[i].X = x
		xys[i].Y = sum / n * scale
	}
	return xys
}
