package calculator

import (
	"math"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// CalcReturns sets Change and InstantReturn on every row in place.
// The first row has no prior close, so both columns are left invalid there.
//
// InstantReturn is the natural log of the previous close rounded to 4 decimals,
// not a log ratio of consecutive closes. A non-positive close gives NaN or -Inf.
func CalcReturns(rows []model.PriceRow) {
	for i := range rows {
		if i == 0 {
			rows[i].Change = null.Float{}
			rows[i].InstantReturn = null.Float{}
			continue
		}
		prev := rows[i-1].Close
		rows[i].Change = null.FloatFrom(rows[i].Close - prev)
		rows[i].InstantReturn = null.FloatFrom(math.Log(round(prev, 4)))
	}
}

// PercentChange returns a copy of series with PercentChange set to the running
// sum of period percent changes in Close, in percent units. Row 0 is 0.
func PercentChange(series *model.PriceSeries) *model.PriceSeries {
	out := series.Clone()
	cum := 0.0
	for i := range out.Rows {
		if i > 0 {
			prev := out.Rows[i-1].Close
			cum += (out.Rows[i].Close - prev) / prev * 100
		}
		out.Rows[i].PercentChange = null.FloatFrom(cum)
	}
	return out
}

// InstantReturns returns the valid, finite InstantReturn values in row order.
func InstantReturns(series *model.PriceSeries) []float64 {
	values := make([]float64, 0, series.Len())
	for _, r := range series.Rows {
		if !r.InstantReturn.Valid {
			continue
		}
		v := r.InstantReturn.Float64
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}
	return values
}

// round rounds half to even at the given number of decimals.
func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*p) / p
}
