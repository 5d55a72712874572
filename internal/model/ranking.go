package model

import "github.com/guregu/null/v6"

// RankingRow is one scraped row of the index performance table.
// A field is invalid when its cell (or the link inside it) was missing.
type RankingRow struct {
	Number    null.String `json:"number"`
	Company   null.String `json:"company"`
	Symbol    null.String `json:"symbol"`
	YTDReturn null.String `json:"ytd_return"`
}

// Fields returns the row values in table order, empty for absent fields.
func (r *RankingRow) Fields() []string {
	return []string{
		r.Number.ValueOrZero(),
		r.Company.ValueOrZero(),
		r.Symbol.ValueOrZero(),
		r.YTDReturn.ValueOrZero(),
	}
}
