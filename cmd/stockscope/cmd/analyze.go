package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot"

	"StockScope/internal/calculator"
	"StockScope/internal/chart"
	"StockScope/internal/collector"
	"StockScope/internal/model"
	"StockScope/internal/notifier"
	"StockScope/internal/recorder"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [SYMBOL]",
	Short: "Fetch daily prices and chart returns and performance",
	Long: `Analyze downloads daily OHLCV bars for one ticker, derives change,
instant_return and percent_change, prints the table and a summary, and
writes two charts:

  <SYMBOL>_returns.png      histogram of instant returns with a KDE curve
  <SYMBOL>_performance.png  cumulative percent change over time

The window defaults to the last 365 days. End is exclusive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	anStart  string
	anEnd    string
	anOutDir string
	anCSV    string
	anMock   bool
	anNotify bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&anStart, "start", "", "first date, YYYY-MM-DD (default today-365d)")
	analyzeCmd.Flags().StringVar(&anEnd, "end", "", "end date, exclusive, YYYY-MM-DD (default today)")
	analyzeCmd.Flags().StringVar(&anOutDir, "out", "", "chart output directory (default analyzer.output_dir)")
	analyzeCmd.Flags().StringVar(&anCSV, "csv", "", "also write the series to this CSV file")
	analyzeCmd.Flags().BoolVar(&anMock, "mock", false, "use generated prices instead of a data provider")
	analyzeCmd.Flags().BoolVar(&anNotify, "notify", false, "send the summary to Telegram")
}

func newFetcher() collector.Fetcher {
	switch {
	case anMock:
		return &collector.MockFetcher{Price: 100}
	case cfg.DataSource.BaseURL != "":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := cfg.DataSource.Symbol
	if len(args) == 1 {
		symbol = args[0]
	}
	query, err := model.NewStockQuery(symbol, firstNonEmpty(anStart, cfg.Analyzer.Start), firstNonEmpty(anEnd, cfg.Analyzer.End), time.Now())
	if err != nil {
		return err
	}

	fetcher := newFetcher()
	zap.L().Info("data source", zap.String("name", fetcher.Name()), zap.Stringer("query", query))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	series, err := collector.NewStock(fetcher, query).Load(ctx)
	if err != nil {
		return err
	}
	pct := calculator.PercentChange(series)

	out := cmd.OutOrStdout()
	printSeries(out, pct)

	summary, err := calculator.Summarize(series)
	if err != nil {
		return err
	}
	printSummary(out, summary)

	style, err := chart.NewStyle(cfg.Analyzer.Style.Color, *cfg.Analyzer.Style.Grid,
		cfg.Analyzer.Style.Width, cfg.Analyzer.Style.Height, cfg.Analyzer.Style.FontSize)
	if err != nil {
		return fmt.Errorf("chart style: %w", err)
	}
	dir := firstNonEmpty(anOutDir, cfg.Analyzer.OutputDir)

	dist, err := chart.ReturnDistribution(series, style)
	switch {
	case errors.Is(err, chart.ErrNoData):
		zap.L().Warn("no finite instant returns, skipping distribution chart", zap.String("symbol", query.Symbol))
	case err != nil:
		return err
	default:
		if err := saveChart(out, dist, style, filepath.Join(dir, query.Symbol+"_returns.png")); err != nil {
			return err
		}
	}

	perf, err := chart.Performance(pct, style)
	if err != nil {
		return err
	}
	if err := saveChart(out, perf, style, filepath.Join(dir, query.Symbol+"_performance.png")); err != nil {
		return err
	}

	if anCSV != "" {
		if err := recorder.SaveSeriesCSV(anCSV, pct); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", anCSV)
	}

	if anNotify {
		notify(ctx, notifier.FormatAnalysisReport(summary))
	}
	return nil
}

func saveChart(out io.Writer, p *plot.Plot, style chart.Style, path string) error {
	if err := chart.Save(p, style, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}

func printSeries(w io.Writer, series *model.PriceSeries) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tOpen\tHigh\tLow\tClose\tAdj Close\tVolume\tchange\tinstant_return\tpercent_change\t")
	for _, r := range series.Rows {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.0f\t%s\t%s\t%s\t\n",
			r.Date.Format(model.DateLayout), r.Open, r.High, r.Low, r.Close, r.AdjClose, r.Volume,
			cell(r.Change), cell(r.InstantReturn), cell(r.PercentChange))
	}
	tw.Flush()
}

func printSummary(w io.Writer, s *model.SeriesSummary) {
	fmt.Fprintf(w, "\n%s %s → %s (%d rows)\n", s.Symbol, s.From.Format(model.DateLayout), s.To.Format(model.DateLayout), s.Rows)
	fmt.Fprintf(w, "  close     %.2f → %.2f (%+.2f%%)\n", s.FirstClose, s.LastClose, s.TotalPct)
	fmt.Fprintf(w, "  range     %.2f ~ %.2f (position %.0f%%)\n", s.Low, s.High, s.Position*100)
	fmt.Fprintf(w, "  sma20     %s\n  sma50     %s\n  rsi14     %s\n\n", cell(s.SMA20), cell(s.SMA50), cell(s.RSI14))
}

func cell(v null.Float) string {
	if !v.Valid {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", v.Float64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
