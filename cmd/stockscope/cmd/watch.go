package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockScope/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scrape the performance table on a cron schedule",
	Long: `Watch runs the scraper on a six-field cron schedule (with seconds)
until SIGINT or SIGTERM. Each run gets its own run id. When Telegram is
configured, every run is reported and the bot answers /scrape, /top
and /help.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	wtCron   string
	wtOutput string
	wtNow    bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&wtCron, "cron", "", "cron spec with seconds (default schedule.scrape_cron)")
	watchCmd.Flags().StringVarP(&wtOutput, "output", "o", "", "output file (default output.path)")
	watchCmd.Flags().BoolVar(&wtNow, "now", false, "run once immediately on start")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := firstNonEmpty(wtOutput, cfg.Output.Path)
	spec := firstNonEmpty(wtCron, cfg.Schedule.ScrapeCron)

	var sender scheduler.Sender
	tn := newNotifier()
	if tn != nil {
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, newSpider(""), openRecorders(out, cmd.OutOrStdout()), sender, zap.L())
	if path := cfg.Database.SQLitePath; path != "" {
		sched.History = scheduler.SQLiteHistory(path)
	}
	if err := sched.RegisterScrape(spec); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		zap.L().Info("telegram polling started")
	}

	if wtNow {
		go func() {
			if _, err := sched.RunNow(); err != nil {
				zap.L().Error("initial scrape", zap.Error(err))
			}
		}()
	}

	zap.L().Info("stockscope is watching, press Ctrl+C to stop", zap.String("cron", spec), zap.String("output", out))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zap.L().Info("shutdown signal received, stopping...")
	cancel()
	return nil
}
