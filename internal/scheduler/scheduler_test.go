package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScope/internal/model"
	"StockScope/internal/recorder"
	"StockScope/internal/scraper"
)

type fakeCrawler struct {
	rows []model.RankingRow
	err  error

	mu    sync.Mutex
	calls int
}

func (f *fakeCrawler) Crawl(_ context.Context, sink scraper.Sink) (int, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	for i := range f.rows {
		if err := sink.RecordRanking(&f.rows[i]); err != nil {
			return i, err
		}
	}
	return len(f.rows), nil
}

func (f *fakeCrawler) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSender struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeSender) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func rankingRows() []model.RankingRow {
	return []model.RankingRow{
		{Number: null.StringFrom("1"), Company: null.StringFrom("Nvidia"), Symbol: null.StringFrom("NVDA"), YTDReturn: null.StringFrom("50%")},
		{Number: null.StringFrom("2"), Company: null.StringFrom("Broadcom"), Symbol: null.StringFrom("AVGO"), YTDReturn: null.StringFrom("32%")},
	}
}

func TestRunNow_RecordsWithRunID(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "rankings.db")
	open := func(runID string) (recorder.Recorder, error) {
		return recorder.NewSQLiteRecorder(dbPath, runID)
	}
	s := NewScheduler(context.Background(), &fakeCrawler{rows: rankingRows()}, open, nil, nil)

	first, err := s.RunNow()
	require.NoError(t, err)
	second, err := s.RunNow()
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Less(t, first.ID, second.ID)
	assert.Equal(t, rankingRows(), second.Rows)
	assert.Same(t, second, s.Last())

	db, err := recorder.NewSQLiteRecorder(dbPath, "")
	require.NoError(t, err)
	defer db.Close()
	latest, err := db.LatestRunID()
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest)
	stored, err := db.Rankings(first.ID)
	require.NoError(t, err)
	assert.Equal(t, rankingRows(), stored)
}

func TestRunNow_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("503")
	s := NewScheduler(context.Background(), &fakeCrawler{err: boom}, nil, nil, nil)
	_, err := s.RunNow()
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, s.Last())

	openErr := errors.New("read-only fs")
	s = NewScheduler(context.Background(), &fakeCrawler{}, func(string) (recorder.Recorder, error) {
		return nil, openErr
	}, nil, nil)
	_, err = s.RunNow()
	assert.ErrorIs(t, err, openErr)
}

func TestScrapeTask_Notifies(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	s := NewScheduler(context.Background(), &fakeCrawler{rows: rankingRows()}, nil, sender, nil)
	s.scrapeTask()

	s.Crawler = &fakeCrawler{err: errors.New("timeout")}
	s.scrapeTask()

	msgs := sender.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "<b>NVDA</b>")
	assert.Contains(t, msgs[1], "scrape failed: timeout")
}

func TestHandleCommand(t *testing.T) {
	t.Parallel()

	s := NewScheduler(context.Background(), &fakeCrawler{rows: rankingRows()}, nil, nil, nil)

	assert.Contains(t, s.HandleCommand("/top"), "No scrape has run yet")
	assert.Contains(t, s.HandleCommand("/scrape"), "<b>AVGO</b>")
	assert.Contains(t, s.HandleCommand("/top"), "<b>NVDA</b>")
	assert.Contains(t, s.HandleCommand("hello"), "/scrape")
}

type blockingCrawler struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingCrawler) Crawl(_ context.Context, _ scraper.Sink) (int, error) {
	close(b.started)
	<-b.release
	return 0, nil
}

func TestLast_DuringRun(t *testing.T) {
	t.Parallel()

	s := NewScheduler(context.Background(), &fakeCrawler{rows: rankingRows()}, nil, nil, nil)
	first, err := s.RunNow()
	require.NoError(t, err)

	crawler := &blockingCrawler{started: make(chan struct{}), release: make(chan struct{})}
	s.Crawler = crawler
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunNow()
	}()
	<-crawler.started

	got := make(chan *Run, 1)
	go func() { got <- s.Last() }()
	select {
	case last := <-got:
		assert.Same(t, first, last)
	case <-time.After(time.Second):
		t.Fatal("Last blocked on a running scrape")
	}
	assert.Contains(t, s.HandleCommand("/top"), "<b>NVDA</b>")

	close(crawler.release)
	<-done
}

func TestHandleCommand_TopFromStoredRun(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "rankings.db")
	open := func(runID string) (recorder.Recorder, error) {
		return recorder.NewSQLiteRecorder(dbPath, runID)
	}
	prev := NewScheduler(context.Background(), &fakeCrawler{rows: rankingRows()}, open, nil, nil)
	run, err := prev.RunNow()
	require.NoError(t, err)

	// a fresh process has no in-memory run
	s := NewScheduler(context.Background(), &fakeCrawler{}, open, nil, nil)
	s.History = SQLiteHistory(dbPath)

	stored, err := s.History()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, run.ID, stored.ID)
	assert.WithinDuration(t, run.Started, stored.Started, time.Second)

	reply := s.HandleCommand("/top")
	assert.Contains(t, reply, "Stored run from")
	assert.Contains(t, reply, "<b>AVGO</b>")
}

func TestHandleCommand_TopEmptyHistory(t *testing.T) {
	t.Parallel()

	s := NewScheduler(context.Background(), &fakeCrawler{}, nil, nil, nil)
	s.History = SQLiteHistory(filepath.Join(t.TempDir(), "empty.db"))
	assert.Contains(t, s.HandleCommand("/top"), "No scrape has run yet")

	s.History = func() (*Run, error) { return nil, errors.New("locked") }
	assert.Contains(t, s.HandleCommand("/top"), "No scrape has run yet")
}

func TestRegisterScrape(t *testing.T) {
	t.Parallel()

	crawler := &fakeCrawler{rows: rankingRows()}
	s := NewScheduler(context.Background(), crawler, nil, nil, nil)

	assert.Error(t, s.RegisterScrape("every tuesday"))
	require.NoError(t, s.RegisterScrape("* * * * * *"))

	s.Start()
	require.Eventually(t, func() bool { return crawler.Calls() > 0 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
	assert.NotNil(t, s.Last())
}
