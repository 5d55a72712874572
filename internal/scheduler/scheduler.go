package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockScope/internal/id"
	"StockScope/internal/model"
	"StockScope/internal/notifier"
	"StockScope/internal/recorder"
	"StockScope/internal/scraper"
)

// Crawler runs one scrape into a sink.
type Crawler interface {
	Crawl(ctx context.Context, sink scraper.Sink) (int, error)
}

// Sender delivers notification messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// OpenFunc opens the recorder for one run.
type OpenFunc func(runID string) (recorder.Recorder, error)

// HistoryFunc loads the most recent stored run, or nil when there is none.
type HistoryFunc func() (*Run, error)

// SQLiteHistory reads the latest run from the SQLite database at path.
func SQLiteHistory(path string) HistoryFunc {
	return func() (*Run, error) {
		runID, rows, err := recorder.LatestRun(path)
		if err != nil || runID == "" {
			return nil, err
		}
		started, err := id.Time(runID)
		if err != nil {
			return nil, fmt.Errorf("run id %q: %w", runID, err)
		}
		return &Run{ID: runID, Started: started, Rows: rows}, nil
	}
}

// Run describes a finished scrape run.
type Run struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Rows     []model.RankingRow
}

// Scheduler runs scrapes on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Crawler  Crawler
	Open     OpenFunc
	Notifier Sender      // optional
	History  HistoryFunc // optional, consulted by /top before the first run
	TopN     int
	Ctx      context.Context

	logger *zap.Logger
	mu     sync.Mutex // serializes runs
	last   atomic.Pointer[Run]
}

// NewScheduler creates a new Scheduler. notifier may be nil.
func NewScheduler(ctx context.Context, crawler Crawler, open OpenFunc, sender Sender, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if open == nil {
		open = func(string) (recorder.Recorder, error) { return recorder.NewNoopRecorder(), nil }
	}
	cronLog := cron.PrintfLogger(zap.NewStdLog(logger))
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cronLog))),
		Crawler:  crawler,
		Open:     open,
		Notifier: sender,
		TopN:     10,
		Ctx:      ctx,
		logger:   logger,
	}
}

// RegisterScrape schedules a scrape run. spec uses the six-field format with seconds.
func (s *Scheduler) RegisterScrape(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scrapeTask); err != nil {
		return fmt.Errorf("register scrape task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running scrape to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow executes one scrape run immediately.
func (s *Scheduler) RunNow() (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &Run{ID: id.New(), Started: time.Now()}
	log := s.logger.With(zap.String("run_id", run.ID))
	log.Info("running scrape")

	rec, err := s.Open(run.ID)
	if err != nil {
		return nil, fmt.Errorf("open recorder: %w", err)
	}
	capture := &captureRecorder{}
	sink := recorder.NewMultiRecorder(rec, capture)

	_, crawlErr := s.Crawler.Crawl(s.Ctx, sink)
	closeErr := sink.Close()
	run.Duration = time.Since(run.Started)
	run.Rows = capture.rows
	if err := errors.Join(crawlErr, closeErr); err != nil {
		return run, err
	}

	s.last.Store(run)
	log.Info("scrape finished", zap.Int("rows", len(run.Rows)), zap.Duration("took", run.Duration))
	return run, nil
}

// Last returns the most recent successful run, or nil. It does not wait for a
// run in progress.
func (s *Scheduler) Last() *Run {
	return s.last.Load()
}

func (s *Scheduler) scrapeTask() {
	run, err := s.RunNow()
	if err != nil {
		s.logger.Error("scrape run failed", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ scrape failed: %v", err))
		return
	}
	s.trySend(notifier.FormatRankingReport(run.Rows, s.TopN))
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scrape":
		run, err := s.RunNow()
		if err != nil {
			return fmt.Sprintf("❌ scrape failed: %v", err)
		}
		return notifier.FormatRankingReport(run.Rows, s.TopN)
	case "/top":
		if last := s.Last(); last != nil {
			return notifier.FormatRankingReport(last.Rows, s.TopN)
		}
		stored, err := s.stored()
		if err != nil {
			s.logger.Warn("load stored run", zap.Error(err))
		}
		if stored == nil {
			return "No scrape has run yet. Send /scrape."
		}
		return fmt.Sprintf("Stored run from %s\n\n%s",
			stored.Started.Local().Format("2006-01-02 15:04"),
			notifier.FormatRankingReport(stored.Rows, s.TopN))
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) stored() (*Run, error) {
	if s.History == nil {
		return nil, nil
	}
	return s.History()
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error("send notification", zap.Error(err))
	}
}

// captureRecorder keeps the rows of the current run in memory.
type captureRecorder struct {
	rows []model.RankingRow
}

func (c *captureRecorder) RecordRanking(row *model.RankingRow) error {
	c.rows = append(c.rows, *row)
	return nil
}

func (c *captureRecorder) Close() error { return nil }
