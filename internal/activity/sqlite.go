package activity

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	ts       INTEGER NOT NULL,
	severity TEXT    NOT NULL,
	message  TEXT    NOT NULL
)`

// insertTimeout bounds a single Add. Add has no context of its own and must
// not stall a lifecycle operation on a locked database.
const insertTimeout = 5 * time.Second

// SQLiteLog persists activity entries in a SQLite database so that separate
// CLI invocations share one history.
type SQLiteLog struct {
	db  *sql.DB
	log *slog.Logger
}

var _ Log = (*SQLiteLog)(nil)

// OpenSQLite opens (creating if needed) the activity database at path.
// If logger is nil, slog.Default() is used for insert failures.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// WAL plus a busy timeout lets a long-running `run` and short CLI
	// commands write to the same file.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create activity table: %w", err)
	}
	return &SQLiteLog{db: db, log: logger}, nil
}

// Add implements Log. Insert failures are logged and dropped: losing an
// activity line must never fail the operation that produced it.
func (l *SQLiteLog) Add(sev Severity, msg string) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	if _, err := l.db.ExecContext(ctx,
		"INSERT INTO activity (ts, severity, message) VALUES (?, ?, ?)",
		time.Now().UnixNano(), sev.String(), msg,
	); err != nil {
		l.log.Warn("activity: insert failed", "error", err, "message", msg)
	}
}

// Recent returns up to n entries, oldest first.
func (l *SQLiteLog) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	const query = `
		SELECT ts, severity, message FROM (
			SELECT id, ts, severity, message FROM activity ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`

	rows, err := l.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err() below catches read errors

	var entries []Entry
	for rows.Next() {
		var (
			ts  int64
			sev string
			msg string
		)
		if err := rows.Scan(&ts, &sev, &msg); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		severity, err := ParseSeverity(sev)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Time: time.Unix(0, ts), Severity: severity, Message: msg})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}
	return entries, nil
}

// Close closes the database.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
