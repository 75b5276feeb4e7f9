package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"forest-cover-benchmark/internal/pipeline"

	_ "modernc.org/sqlite"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	project       TEXT NOT NULL DEFAULT '',
	start_path    TEXT NOT NULL,
	mid_path      TEXT NOT NULL,
	end_path      TEXT NOT NULL,
	output_path   TEXT NOT NULL,
	resolution_x  REAL NOT NULL,
	resolution_y  REAL NOT NULL,
	pixel_area_ha REAL NOT NULL,
	unclassified  INTEGER NOT NULL,
	total_ha      REAL NOT NULL,
	finished_at   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS class_areas (
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	kind        TEXT NOT NULL,
	class       INTEGER NOT NULL,
	description TEXT NOT NULL,
	pixels      INTEGER NOT NULL,
	hectares    REAL NOT NULL,
	share_pct   REAL NOT NULL,
	PRIMARY KEY (run_id, kind, class)
);
`

// Ledger keeps every run's area tables in a SQLite database, alongside the
// run that produced them.
type Ledger struct {
	db *sql.DB
}

func OpenLedger(dbPath string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ledger database: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Shutdown implements shutdown.Shutdownable.
func (l *Ledger) Shutdown() {
	l.Close()
}

func (l *Ledger) Consume(ctx context.Context, r *pipeline.Result) error {
	return l.Record(ctx, Summarize(r))
}

// Record stores a run and both of its area tables in one transaction.
func (l *Ledger) Record(ctx context.Context, s Summary) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, project, start_path, mid_path, end_path, output_path,
		                  resolution_x, resolution_y, pixel_area_ha, unclassified, total_ha, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Project, s.Start, s.Mid, s.End, s.Output,
		s.ResolutionX, s.ResolutionY, s.PixelAreaHa, s.Unclassified, s.TotalHectares,
		s.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO class_areas (run_id, kind, class, description, pixels, hectares, share_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare class insert: %w", err)
	}
	defer stmt.Close()

	for kind, rows := range map[string][]ClassArea{"transitional": s.Transitional, "interpreted": s.Interpreted} {
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, s.RunID, kind, row.Class, row.Description, row.Pixels, row.Hectares, row.Share); err != nil {
				return fmt.Errorf("failed to insert %s class %d: %w", kind, row.Class, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

// Runs returns stored summaries, most recent first.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, project, start_path, mid_path, end_path, output_path,
		       resolution_x, resolution_y, pixel_area_ha, unclassified, total_ha, finished_at
		FROM runs
		ORDER BY finished_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var finished int64
		if err := rows.Scan(&s.RunID, &s.Project, &s.Start, &s.Mid, &s.End, &s.Output,
			&s.ResolutionX, &s.ResolutionY, &s.PixelAreaHa, &s.Unclassified, &s.TotalHectares, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.FinishedAt = time.Unix(0, finished).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := l.loadAreas(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *Ledger) loadAreas(ctx context.Context, s *Summary) error {
	rows, err := l.db.QueryContext(ctx, `
		SELECT kind, class, description, pixels, hectares, share_pct
		FROM class_areas
		WHERE run_id = ?
		ORDER BY kind, class`, s.RunID)
	if err != nil {
		return fmt.Errorf("failed to query class areas: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var a ClassArea
		if err := rows.Scan(&kind, &a.Class, &a.Description, &a.Pixels, &a.Hectares, &a.Share); err != nil {
			return fmt.Errorf("failed to scan class area: %w", err)
		}
		switch kind {
		case "transitional":
			s.Transitional = append(s.Transitional, a)
		case "interpreted":
			s.Interpreted = append(s.Interpreted, a)
		}
	}
	return rows.Err()
}
