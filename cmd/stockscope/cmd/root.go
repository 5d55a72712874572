package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockScope/internal/config"
	"StockScope/internal/logging"
	"StockScope/internal/notifier"
	"StockScope/internal/recorder"
	"StockScope/internal/scheduler"
)

var (
	cfgPath  string
	logLevel string

	cfg      *config.Config
	flushLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "stockscope",
	Short: "Daily price analysis and S&P 500 performance scraping",
	Long: `StockScope fetches daily prices for a ticker and charts its return
distribution and cumulative performance, and scrapes the S&P 500
year-to-date performance table.

Examples:
  stockscope analyze NVDA --start 2024-01-01
  stockscope scrape -o rows.jl
  stockscope watch --cron "0 30 16 * * 1-5" -o data/rankings.db`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { flushLog() },
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		zap.L().Error("command failed", zap.Error(err))
	}
	return err
}

func init() {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "path to YAML config (env CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	flush, err := logging.Setup(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Format:  cfg.Log.Format,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	flushLog = flush
	return nil
}

// openRecorders returns a scheduler.OpenFunc writing to out, or as JSON lines
// to stdout when out is empty, plus the configured SQLite database.
func openRecorders(out string, stdout io.Writer) scheduler.OpenFunc {
	return func(runID string) (recorder.Recorder, error) {
		var recs []recorder.Recorder
		if out == "" {
			recs = append(recs, recorder.NewJSONLinesWriter(stdout))
		} else {
			rec, err := recorder.Open(out, runID)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}

		if path := cfg.Database.SQLitePath; path != "" && path != out {
			db, err := recorder.NewSQLiteRecorder(path, runID)
			if err != nil {
				zap.L().Warn("init sqlite recorder failed, skipping", zap.Error(err))
			} else {
				recs = append(recs, db)
			}
		}
		if len(recs) == 1 {
			return recs[0], nil
		}
		return recorder.NewMultiRecorder(recs...), nil
	}
}

func newNotifier() *notifier.TelegramNotifier {
	if !cfg.TelegramEnabled() {
		return nil
	}
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
}

// notify sends text to Telegram. Failures are logged, not returned.
func notify(ctx context.Context, text string) {
	tn := newNotifier()
	if tn == nil {
		zap.L().Warn("telegram not configured, skipping notification")
		return
	}
	if err := tn.SendWithRetry(ctx, text, 3); err != nil {
		zap.L().Error("send notification", zap.Error(err))
	}
}
