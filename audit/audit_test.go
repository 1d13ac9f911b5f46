package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/testweave/kit"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA foreign_keys=ON")
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteLogger_Init(t *testing.T) {
	db := setupTestDB(t)
	logger := NewSQLiteLogger(db)
	defer logger.Close()

	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='audit_log'").Scan(&count)
	if count != 1 {
		t.Fatal("audit_log table not created")
	}
}

func TestSQLiteLogger_Log_Sync(t *testing.T) {
	db := setupTestDB(t)
	logger := NewSQLiteLogger(db)
	defer logger.Close()
	logger.Init()

	ctx := context.Background()
	entry := &Entry{
		Action:     "validate_locator",
		Parameters: `{"locator":"role=button"}`,
	}
	if err := logger.Log(ctx, entry); err != nil {
		t.Fatal(err)
	}

	// Verify defaults were filled.
	if entry.EntryID == "" {
		t.Fatal("entry_id not generated")
	}
	if entry.Timestamp == 0 {
		t.Fatal("timestamp not set")
	}
	if entry.Status != "success" {
		t.Fatalf("status: got %q, want 'success'", entry.Status)
	}
	if entry.Transport != "stdio" {
		t.Fatalf("transport: got %q, want 'stdio'", entry.Transport)
	}

	// Verify in DB.
	var action string
	db.QueryRow("SELECT action FROM audit_log WHERE entry_id = ?", entry.EntryID).Scan(&action)
	if action != "validate_locator" {
		t.Fatalf("DB action: got %q", action)
	}
}

func TestSQLiteLogger_LogAsync(t *testing.T) {
	db := setupTestDB(t)
	logger := NewSQLiteLogger(db)
	logger.Init()

	entry := &Entry{Action: "async_test"}
	logger.LogAsync(entry)

	// Close flushes the buffer.
	logger.Close()

	var count int
	db.QueryRow("SELECT COUNT(*) FROM audit_log WHERE action='async_test'").Scan(&count)
	if count != 1 {
		t.Fatalf("async entry count: got %d", count)
	}
}

func TestSQLiteLogger_FillDefaults_Error(t *testing.T) {
	db := setupTestDB(t)
	logger := NewSQLiteLogger(db)
	defer logger.Close()
	logger.Init()

	entry := &Entry{
		Action: "failing_op",
		Error:  "something broke",
	}
	logger.Log(context.Background(), entry)

	if entry.Status != "error" {
		t.Fatalf("status for error entry: got %q", entry.Status)
	}
}

func TestSQLiteLogger_WithIDGenerator(t *testing.T) {
	db := setupTestDB(t)
	gen := func() string { return "custom_id" }

	logger := NewSQLiteLogger(db, WithIDGenerator(gen))
	defer logger.Close()
	logger.Init()

	entry := &Entry{Action: "custom_gen"}
	logger.Log(context.Background(), entry)

	if entry.EntryID != "custom_id" {
		t.Fatalf("custom ID: got %q", entry.EntryID)
	}
}

func TestSQLiteLogger_Recent(t *testing.T) {
	db := setupTestDB(t)
	logger := NewSQLiteLogger(db)
	defer logger.Close()
	logger.Init()

	ctx := context.Background()
	logger.Log(ctx, &Entry{Action: "first", Timestamp: 100})
	logger.Log(ctx, &Entry{Action: "second", Timestamp: 200})

	entries, err := logger.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].Action != "second" {
		t.Fatalf("newest first: got %q", entries[0].Action)
	}
}

func TestMiddleware_Success(t *testing.T) {
	db := setupTestDB(t)
	logger := NewSQLiteLogger(db)
	logger.Init()

	base := func(ctx context.Context, req any) (any, error) {
		return "Locator is valid", nil
	}

	mw := Middleware(logger, "validate_locator")
	endpoint := mw(base)

	ctx := kit.WithTransport(context.Background(), "mcp_quic")
	ctx = kit.WithSessionID(ctx, "quic_abc12345")

	resp, err := endpoint(ctx, map[string]string{"locator": "text=Sign in"})
	if err != nil {
		t.Fatal(err)
	}
	if resp != "Locator is valid" {
		t.Fatalf("response: got %v", resp)
	}

	// Close to flush async entries.
	logger.Close()

	var action, transport, session, status, result string
	db.QueryRow("SELECT action, transport, session_id, status, result FROM audit_log WHERE action='validate_locator'").
		Scan(&action, &transport, &session, &status, &result)
	if action != "validate_locator" {
		t.Fatalf("action: got %q", action)
	}
	if transport != "mcp_quic" {
		t.Fatalf("transport: got %q", transport)
	}
	if session != "quic_abc12345" {
		t.Fatalf("session_id: got %q", session)
	}
	if status != "success" {
		t.Fatalf("status: got %q", status)
	}
	if result != "Locator is valid" {
		t.Fatalf("result: got %q", result)
	}
}

func TestMiddleware_Error(t *testing.T) {
	db := setupTestDB(t)
	logger := NewSQLiteLogger(db)
	logger.Init()

	errFail := errors.New("endpoint failed")
	base := func(ctx context.Context, req any) (any, error) {
		return nil, errFail
	}

	mw := Middleware(logger, "fail_op")
	endpoint := mw(base)

	_, err := endpoint(context.Background(), nil)
	if !errors.Is(err, errFail) {
		t.Fatalf("error: got %v", err)
	}

	logger.Close()

	var status, errMsg string
	db.QueryRow("SELECT status, error_message FROM audit_log WHERE action='fail_op'").
		Scan(&status, &errMsg)
	if status != "error" {
		t.Fatalf("status: got %q", status)
	}
	if errMsg != "endpoint failed" {
		t.Fatalf("error_message: got %q", errMsg)
	}
}
