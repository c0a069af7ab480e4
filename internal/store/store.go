// Package store mirrors jform session state into a local SQLite database so
// an interrupted session can be recovered, and keeps a bounded history of
// document snapshots.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/calumari/jform/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when a snapshot id is unknown.
var ErrNoSnapshot = errors.New("snapshot not found")

// State is the mirrored session: the document text plus the view state
// needed to resume where the user left off.
type State struct {
	Document   []byte
	Index      int
	Mode       string
	File       string
	SortColumn string
	SortDesc   bool
}

// Snapshot is one entry of the document history.
type Snapshot struct {
	ID        uuid.UUID
	File      string
	Reason    string
	CreatedAt time.Time
	Document  []byte
}

// Store is a SQLite-backed key/value mirror with snapshot history.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	limit  int
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l) }
}

// WithHistoryLimit bounds the number of snapshots kept.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every pooled connection to ":memory:" would see its own database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, limit: 50, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		file TEXT NOT NULL,
		reason TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		document TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

const upsertKV = "INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value"

// Put stores a preference value.
func (s *Store) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, upsertKV, key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get reads a preference value. ok is false when the key was never stored.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

const (
	keyDocument   = "document"
	keyIndex      = "current_index"
	keyMode       = "view_mode"
	keyFile       = "last_file"
	keySortColumn = "sort_column"
	keySortDir    = "sort_direction"
)

// SaveState mirrors st in a single transaction.
func (s *Store) SaveState(ctx context.Context, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := "asc"
	if st.SortDesc {
		dir = "desc"
	}
	values := map[string]string{
		keyDocument:   string(st.Document),
		keyIndex:      strconv.Itoa(st.Index),
		keyMode:       st.Mode,
		keyFile:       st.File,
		keySortColumn: st.SortColumn,
		keySortDir:    dir,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror: %w", err)
	}
	defer tx.Rollback()

	for k, v := range values {
		if _, err := tx.ExecContext(ctx, upsertKV, k, v); err != nil {
			return fmt.Errorf("mirror %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mirror: %w", err)
	}
	s.logger.Debug("state mirrored", zap.Int("bytes", len(st.Document)), zap.Int("index", st.Index))
	return nil
}

// LoadState reads the mirrored state. ok is false when nothing was mirrored.
func (s *Store) LoadState(ctx context.Context) (st State, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM kv WHERE key IN (?, ?, ?, ?, ?, ?)",
		keyDocument, keyIndex, keyMode, keyFile, keySortColumn, keySortDir)
	if err != nil {
		return State{}, false, fmt.Errorf("load state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return State{}, false, fmt.Errorf("load state: %w", err)
		}
		switch k {
		case keyDocument:
			st.Document = []byte(v)
			ok = v != ""
		case keyIndex:
			st.Index, _ = strconv.Atoi(v)
		case keyMode:
			st.Mode = v
		case keyFile:
			st.File = v
		case keySortColumn:
			st.SortColumn = v
		case keySortDir:
			st.SortDesc = v == "desc"
		}
	}
	if err := rows.Err(); err != nil {
		return State{}, false, fmt.Errorf("load state: %w", err)
	}
	return st, ok, nil
}

// AddSnapshot records doc in the history and prunes the oldest entries
// beyond the history limit.
func (s *Store) AddSnapshot(ctx context.Context, file, reason string, doc []byte) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO snapshots (id, file, reason, created_at, document) VALUES (?, ?, ?, ?, ?)",
		id.String(), file, reason, s.now().UnixNano(), string(doc)); err != nil {
		return uuid.Nil, fmt.Errorf("add snapshot: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, s.limit)
	if err != nil {
		return uuid.Nil, fmt.Errorf("prune snapshots: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug("snapshots pruned", zap.Int64("count", n))
	}
	s.logger.Info("snapshot recorded", zap.String("id", id.String()), zap.String("file", file), zap.String("reason", reason))
	return id, nil
}

// Snapshots lists the history newest first, without document bodies.
func (s *Store) Snapshots(ctx context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, file, reason, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			id   string
			snap Snapshot
			ts   int64
		)
		if err := rows.Scan(&id, &snap.File, &snap.Reason, &ts); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		if snap.ID, err = uuid.Parse(id); err != nil {
			s.logger.Warn("skipping snapshot with malformed id", zap.String("id", id))
			continue
		}
		snap.CreatedAt = time.Unix(0, ts)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Snapshot loads one snapshot including its document.
func (s *Store) Snapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{ID: id}
	var (
		ts  int64
		doc string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT file, reason, created_at, document FROM snapshots WHERE id = ?", id.String()).
		Scan(&snap.File, &snap.Reason, &ts, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%s: %w", id, ErrNoSnapshot)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	snap.CreatedAt = time.Unix(0, ts)
	snap.Document = []byte(doc)
	return snap, nil
}
