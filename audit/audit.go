// CLAUDE:SUMMARY SQLite audit trail for tool invocations — sync/async logging plus an endpoint middleware.
// Package audit records tool invocations in an SQLite audit trail.
//
// Auditing is advisory: a failing audit store never fails the audited
// operation. Use Middleware to wrap kit endpoints, or Log/LogAsync directly.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/testweave/dbopen"
	"github.com/hazyhaar/testweave/idgen"
	"github.com/hazyhaar/testweave/kit"
)

// Entry is one audit record. Zero-value fields are filled by the logger.
type Entry struct {
	EntryID    string `json:"entry_id"`
	Timestamp  int64  `json:"timestamp"` // epoch milliseconds
	Action     string `json:"action"`
	Parameters string `json:"parameters,omitempty"` // JSON
	Result     string `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
	Status     string `json:"status"` // "success" | "error"
	Transport  string `json:"transport"`
	SessionID  string `json:"session_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	entry_id      TEXT PRIMARY KEY,
	timestamp     INTEGER NOT NULL,
	action        TEXT NOT NULL,
	parameters    TEXT NOT NULL DEFAULT '',
	result        TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'success',
	transport     TEXT NOT NULL DEFAULT '',
	session_id    TEXT NOT NULL DEFAULT '',
	request_id    TEXT NOT NULL DEFAULT '',
	duration_ms   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_audit_log_time ON audit_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action, timestamp);
`

// SQLiteLogger writes audit entries to an SQLite database.
type SQLiteLogger struct {
	db    *sql.DB
	newID idgen.Generator

	mu     sync.Mutex
	buf    chan *Entry
	done   chan struct{}
	closed bool
}

// Option configures a SQLiteLogger.
type Option func(*SQLiteLogger)

// WithIDGenerator sets a custom ID generator for entry IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *SQLiteLogger) { l.newID = gen }
}

// NewSQLiteLogger creates a logger writing to db. Call Init before use.
func NewSQLiteLogger(db *sql.DB, opts ...Option) *SQLiteLogger {
	l := &SQLiteLogger{
		db:    db,
		newID: idgen.Prefixed("aud_", idgen.Default),
		buf:   make(chan *Entry, 256),
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(l)
	}
	go l.drain()
	return l
}

// Init creates the audit_log table if missing.
func (l *SQLiteLogger) Init() error {
	_, err := l.db.Exec(schema)
	return err
}

// Log writes an entry synchronously, filling defaults from ctx.
func (l *SQLiteLogger) Log(ctx context.Context, e *Entry) error {
	l.fillDefaults(ctx, e)
	return l.write(ctx, e)
}

// LogAsync queues an entry for background writing. Drops (with a warning)
// when the buffer is full rather than blocking the caller.
func (l *SQLiteLogger) LogAsync(e *Entry) {
	l.fillDefaults(context.Background(), e)
	select {
	case l.buf <- e:
	default:
		slog.Warn("audit: buffer full, dropping entry", "action", e.Action)
	}
}

// Recent returns the most recent entries, newest first.
func (l *SQLiteLogger) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT entry_id, timestamp, action, parameters, result, error_message,
		       status, transport, session_id, request_id, duration_ms
		FROM audit_log ORDER BY timestamp DESC, entry_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EntryID, &e.Timestamp, &e.Action, &e.Parameters, &e.Result,
			&e.Error, &e.Status, &e.Transport, &e.SessionID, &e.RequestID, &e.DurationMs); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Close flushes queued async entries and stops the background writer.
func (l *SQLiteLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.buf)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *SQLiteLogger) drain() {
	defer close(l.done)
	for e := range l.buf {
		if err := l.write(context.Background(), e); err != nil {
			slog.Warn("audit: async write failed", "action", e.Action, "error", err)
		}
	}
}

func (l *SQLiteLogger) fillDefaults(ctx context.Context, e *Entry) {
	if e.EntryID == "" {
		e.EntryID = l.newID()
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	if e.Status == "" {
		if e.Error != "" {
			e.Status = "error"
		} else {
			e.Status = "success"
		}
	}
	if e.Transport == "" {
		e.Transport = kit.GetTransport(ctx)
	}
	if e.SessionID == "" {
		e.SessionID = kit.GetSessionID(ctx)
	}
	if e.RequestID == "" {
		e.RequestID = kit.GetRequestID(ctx)
	}
}

func (l *SQLiteLogger) write(ctx context.Context, e *Entry) error {
	_, err := dbopen.Exec(ctx, l.db, `
		INSERT INTO audit_log (
			entry_id, timestamp, action, parameters, result, error_message,
			status, transport, session_id, request_id, duration_ms
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		e.EntryID, e.Timestamp, e.Action, e.Parameters, e.Result, e.Error,
		e.Status, e.Transport, e.SessionID, e.RequestID, e.DurationMs)
	return err
}

// Middleware returns a kit.Middleware that audits every invocation of the
// wrapped endpoint under the given action name. Entries are queued async so
// audit latency never adds to tool latency.
func Middleware(l *SQLiteLogger, action string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			e := &Entry{
				Action:     action,
				Transport:  kit.GetTransport(ctx),
				SessionID:  kit.GetSessionID(ctx),
				RequestID:  kit.GetRequestID(ctx),
				DurationMs: time.Since(start).Milliseconds(),
			}
			if req != nil {
				if data, mErr := json.Marshal(req); mErr == nil {
					e.Parameters = string(data)
				}
			}
			if err != nil {
				e.Error = err.Error()
			} else if s, ok := resp.(string); ok {
				e.Result = s
			}
			l.LogAsync(e)

			return resp, err
		}
	}
}
