package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/id"
	"github.com/Iron-Ham/divvy/internal/merge"
	"github.com/Iron-Ham/divvy/internal/plan"
)

// defaultLimit caps listing queries when the caller passes no limit.
const defaultLimit = 20

type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path and
// applies migrations.
func Open(ctx context.Context, path string) (Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, errors.Wrap(err, "opening history database")
	}

	// sqlite handles concurrent reads but only one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrating history database")
	}

	return &sqliteStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS plan_runs (
			id TEXT PRIMARY KEY,
			epic TEXT,
			created_at DATETIME NOT NULL,
			viable BOOLEAN NOT NULL,
			reason TEXT NOT NULL,
			file_count INTEGER NOT NULL,
			domain_count INTEGER NOT NULL,
			overlap_percentage REAL NOT NULL,
			recommended_mode TEXT NOT NULL,
			decision_json TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS merge_runs (
			id TEXT PRIMARY KEY,
			epic TEXT,
			created_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			abort_reason TEXT,
			trunk_head TEXT,
			summary_json TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_plan_runs_created ON plan_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_runs_epic ON plan_runs(epic)`,
		`CREATE INDEX IF NOT EXISTS idx_merge_runs_created ON merge_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_merge_runs_epic ON merge_runs(epic)`,
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) RecordPlan(ctx context.Context, epic string, decision plan.Decision) (*PlanRun, error) {
	run := &PlanRun{
		ID:        id.Generate(),
		Epic:      epic,
		CreatedAt: time.Now().UTC(),
		Decision:  decision,
	}

	decisionJSON, err := json.Marshal(decision)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling decision")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plan_runs (id, epic, created_at, viable, reason, file_count, domain_count, overlap_percentage, recommended_mode, decision_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Epic, run.CreatedAt,
		decision.Viable, decision.Reason, decision.FileCount, decision.DomainCount,
		decision.OverlapPercentage, string(decision.RecommendedMode), string(decisionJSON))
	if err != nil {
		return nil, errors.Wrap(err, "recording plan run")
	}
	return run, nil
}

func (s *sqliteStore) RecordMerge(ctx context.Context, epic string, summary *merge.Summary) (*MergeRun, error) {
	if summary == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "merge summary is nil")
	}

	run := &MergeRun{
		ID:        id.Generate(),
		Epic:      epic,
		CreatedAt: time.Now().UTC(),
		Summary:   *summary,
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling merge summary")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO merge_runs (id, epic, created_at, status, abort_reason, trunk_head, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Epic, run.CreatedAt,
		summary.Status, summary.AbortReason, summary.TrunkHead, string(summaryJSON))
	if err != nil {
		return nil, errors.Wrap(err, "recording merge run")
	}
	return run, nil
}

func (s *sqliteStore) RecentPlans(ctx context.Context, limit int) ([]*PlanRun, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, epic, created_at, decision_json
		FROM plan_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing plan runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []*PlanRun
	for rows.Next() {
		run := &PlanRun{}
		var decisionJSON string
		if err := rows.Scan(&run.ID, &run.Epic, &run.CreatedAt, &decisionJSON); err != nil {
			return nil, errors.Wrap(err, "scanning plan run")
		}
		if err := json.Unmarshal([]byte(decisionJSON), &run.Decision); err != nil {
			return nil, errors.Wrapf(err, "parsing decision for run %s", run.ID)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *sqliteStore) RecentMerges(ctx context.Context, limit int) ([]*MergeRun, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, epic, created_at, summary_json
		FROM merge_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing merge runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []*MergeRun
	for rows.Next() {
		run := &MergeRun{}
		var summaryJSON string
		if err := rows.Scan(&run.ID, &run.Epic, &run.CreatedAt, &summaryJSON); err != nil {
			return nil, errors.Wrap(err, "scanning merge run")
		}
		if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
			return nil, errors.Wrapf(err, "parsing summary for run %s", run.ID)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// Ensure sqliteStore implements Store.
var _ Store = (*sqliteStore)(nil)
