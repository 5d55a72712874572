package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"StockScope/internal/model"
)

// FormatAnalysisReport formats a series summary into a Telegram message.
func FormatAnalysisReport(sum *model.SeriesSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s → %s\n\n",
		html.EscapeString(sum.Symbol), sum.From.Format(model.DateLayout), sum.To.Format(model.DateLayout)))

	b.WriteString(fmt.Sprintf("Close: %.2f → %.2f (%+.2f%%)\n", sum.FirstClose, sum.LastClose, sum.TotalPct))
	b.WriteString(fmt.Sprintf("Range: %.2f ~ %.2f (position %.0f%%)\n", sum.Low, sum.High, sum.Position*100))
	b.WriteString(fmt.Sprintf("SMA20: %s | SMA50: %s\n", formatOptional(sum.SMA20, "%.2f"), formatOptional(sum.SMA50, "%.2f")))
	b.WriteString(fmt.Sprintf("RSI14: %s\n", formatOptional(sum.RSI14, "%.0f")))
	b.WriteString(fmt.Sprintf("Trading days: %d\n", sum.Rows))

	if sum.RSI14.Valid {
		switch {
		case sum.RSI14.Float64 > 70:
			b.WriteString("\n⚠️ RSI overbought\n")
		case sum.RSI14.Float64 < 30:
			b.WriteString("\n🎣 RSI oversold\n")
		}
	}
	return b.String()
}

// FormatRankingReport formats the first topN ranking rows. topN <= 0 means all rows.
func FormatRankingReport(rows []model.RankingRow, topN int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>S&amp;P 500 YTD performance</b> | %s\n\n", time.Now().Format(model.DateLayout)))

	if len(rows) == 0 {
		b.WriteString("No rows scraped.")
		return b.String()
	}
	if topN <= 0 || topN > len(rows) {
		topN = len(rows)
	}
	for _, r := range rows[:topN] {
		b.WriteString(fmt.Sprintf("%s. <b>%s</b> %s  %s\n",
			text(r.Number), text(r.Symbol), text(r.Company), text(r.YTDReturn)))
	}
	if topN < len(rows) {
		b.WriteString(fmt.Sprintf("\n… %d more", len(rows)-topN))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Commands:\n• /scrape run a crawl now\n• /top show the latest ranking\n• /help"
}

func text(s null.String) string {
	if !s.Valid {
		return "-"
	}
	return html.EscapeString(strings.TrimSpace(s.String))
}

func formatOptional(v null.Float, format string) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf(format, v.Float64)
}
