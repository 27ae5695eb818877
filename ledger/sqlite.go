package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	epoch TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ledger_entries (
	event_key TEXT PRIMARY KEY,
	fired INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLiteBackend persists the ledger in a single SQLite file so it survives
// the game and the splitter restarting.
type SQLiteBackend struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteBackend) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Entries: map[string]bool{}}

	err := s.db.QueryRowContext(ctx, `SELECT epoch FROM ledger_meta WHERE id = 1`).Scan(&snap.Epoch)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("load epoch: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT event_key, fired FROM ledger_entries`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var fired int64
		if err := rows.Scan(&key, &fired); err != nil {
			return Snapshot{}, fmt.Errorf("scan entry: %w", err)
		}
		snap.Entries[key] = fired != 0
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("load entries: %w", err)
	}

	return snap, nil
}

func (s *SQLiteBackend) Put(ctx context.Context, key string, fired bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (event_key, fired, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(event_key) DO UPDATE SET fired = excluded.fired, updated_at = excluded.updated_at`,
		key, boolToInt(fired), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteBackend) Replace(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_meta (id, epoch, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET epoch = excluded.epoch, updated_at = excluded.updated_at`,
		snap.Epoch, now,
	); err != nil {
		return fmt.Errorf("store epoch: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ledger_entries (event_key, fired, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, fired := range snap.Entries {
		if _, err := stmt.ExecContext(ctx, key, boolToInt(fired), now); err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
