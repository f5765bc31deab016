package sheets

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/pisense/internal/infrastructure/config"
)

// Local driver constants.
const (
	// dirPermissions is the permission mode for the sheet directory.
	dirPermissions = 0750

	// busyTimeoutMS is the maximum time to wait for a database lock.
	busyTimeoutMS = 5000

	// connectionTimeout is the timeout for verifying connectivity.
	connectionTimeout = 5 * time.Second
)

// schema is the spreadsheet-shaped storage: one record per appended
// row, one record per cell. Cascade keeps cells in step with pruning.
const schema = `
CREATE TABLE IF NOT EXISTS rows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cells (
	row_id INTEGER NOT NULL REFERENCES rows(id) ON DELETE CASCADE,
	col    TEXT NOT NULL,
	value  REAL NOT NULL,
	PRIMARY KEY (row_id, col)
);
`

// Local appends rows to an SQLite file, the offline sheet driver.
//
// MaxRows bounds the file: once exceeded, the oldest rows are pruned so
// the local sheet stays a bounded recent-row window rather than growing
// into a historical archive.
type Local struct {
	db      *sql.DB
	path    string
	maxRows int
}

// OpenLocal opens (creating if needed) the local sheet file.
//
// It performs the following setup:
//  1. Creates the directory if it doesn't exist
//  2. Opens the file with WAL mode and busy timeout
//  3. Verifies the connection with a ping
//  4. Creates the schema if not present
func OpenLocal(cfg config.SheetConfig) (*Local, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating sheet directory: %w", err)
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		cfg.Path, busyTimeoutMS,
	)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening sheet file: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying sheet file: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("creating sheet schema: %w", err)
	}

	return &Local{
		db:      db,
		path:    cfg.Path,
		maxRows: cfg.MaxRows,
	}, nil
}

// Close closes the sheet file.
func (l *Local) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// AppendRow inserts one row and its cells in a single transaction, then
// prunes rows beyond the configured bound.
func (l *Local) AppendRow(ctx context.Context, row Row) error {
	if l.db == nil {
		return ErrNotOpen
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrAppendFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rows (ts) VALUES (?)`,
		row.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert row: %w", ErrAppendFailed, err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: row id: %w", ErrAppendFailed, err)
	}

	for _, col := range row.Columns() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cells (row_id, col, value) VALUES (?, ?, ?)`,
			rowID, col, row.Cells[col],
		); err != nil {
			return fmt.Errorf("%w: insert cell %s: %w", ErrAppendFailed, col, err)
		}
	}

	if l.maxRows > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM rows WHERE id <= (
				SELECT id FROM rows ORDER BY id DESC LIMIT 1 OFFSET ?
			)`,
			l.maxRows,
		); err != nil {
			return fmt.Errorf("%w: pruning rows: %w", ErrAppendFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrAppendFailed, err)
	}
	return nil
}

// RowCount returns the number of rows currently in the sheet.
func (l *Local) RowCount(ctx context.Context) (int, error) {
	if l.db == nil {
		return 0, ErrNotOpen
	}
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return n, nil
}
