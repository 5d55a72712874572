package recorder

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"StockScope/internal/model"
)

// SQLiteRecorder persists ranking rows to a SQLite database, tagging each row
// with the run that scraped it.
type SQLiteRecorder struct {
	db    *sqlx.DB
	mu    sync.Mutex
	runID string
}

type rankingRecord struct {
	ID        int64       `db:"id"`
	RunID     string      `db:"run_id"`
	ScrapedAt int64       `db:"scraped_at"`
	Number    null.String `db:"number"`
	Company   null.String `db:"company"`
	Symbol    null.String `db:"symbol"`
	YTDReturn null.String `db:"ytd_return"`
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath, runID string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers are not blocked by a running crawl.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, runID: runID}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.L().Info("sqlite recorder opened", zap.String("path", dbPath), zap.String("run_id", runID))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rankings (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT    NOT NULL,
			scraped_at INTEGER NOT NULL,
			number     TEXT,
			company    TEXT,
			symbol     TEXT,
			ytd_return TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_run ON rankings(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_symbol ON rankings(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRanking(row *model.RankingRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.NamedExec(`INSERT INTO rankings
		(run_id, scraped_at, number, company, symbol, ytd_return)
		VALUES (:run_id, :scraped_at, :number, :company, :symbol, :ytd_return)`,
		rankingRecord{
			RunID:     r.runID,
			ScrapedAt: time.Now().Unix(),
			Number:    row.Number,
			Company:   row.Company,
			Symbol:    row.Symbol,
			YTDReturn: row.YTDReturn,
		},
	)
	return err
}

// Rankings returns the rows of one run in insertion order.
func (r *SQLiteRecorder) Rankings(runID string) ([]model.RankingRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []rankingRecord
	if err := r.db.Select(&records, `SELECT * FROM rankings WHERE run_id = ? ORDER BY id`, runID); err != nil {
		return nil, fmt.Errorf("select rankings: %w", err)
	}
	rows := make([]model.RankingRow, len(records))
	for i, rec := range records {
		rows[i] = model.RankingRow{
			Number:    rec.Number,
			Company:   rec.Company,
			Symbol:    rec.Symbol,
			YTDReturn: rec.YTDReturn,
		}
	}
	return rows, nil
}

// LatestRunID returns the most recent run, or "" when the table is empty.
func (r *SQLiteRecorder) LatestRunID() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var runID null.String
	if err := r.db.Get(&runID, `SELECT MAX(run_id) FROM rankings`); err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return runID.ValueOrZero(), nil
}

// LatestRun reads the rows of the most recent run stored at dbPath. runID is
// "" when no run has been stored.
func LatestRun(dbPath string) (runID string, rows []model.RankingRow, err error) {
	r, err := NewSQLiteRecorder(dbPath, "")
	if err != nil {
		return "", nil, err
	}
	defer func() { err = errors.Join(err, r.Close()) }()

	runID, err = r.LatestRunID()
	if err != nil || runID == "" {
		return "", nil, err
	}
	rows, err = r.Rankings(runID)
	if err != nil {
		return "", nil, err
	}
	return runID, rows, nil
}

func (r *SQLiteRecorder) Close() error {
	zap.L().Info("closing sqlite recorder")
	return r.db.Close()
}
