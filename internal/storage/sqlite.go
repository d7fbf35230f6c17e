package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultPollInterval is how often Watch checks SQLite for foreign commits.
const DefaultPollInterval = 500 * time.Millisecond

// SQLiteOptions configures OpenSQLite.
type SQLiteOptions struct {
	// Origin identifies this instance's writes. Generated when empty.
	Origin string

	// PollInterval is how often Watch polls PRAGMA data_version.
	PollInterval time.Duration

	// BusyTimeout bounds how long a writer waits for another process's lock.
	BusyTimeout time.Duration
}

// SQLite stores values in a single kv table. Several processes may open the
// same database file; Watch reports the writes of the others.
type SQLite struct {
	db           *sql.DB
	path         string
	origin       string
	pollInterval time.Duration

	// own holds, per key, the revisions written by this instance that
	// Watch has not yet accounted for.
	mu  sync.Mutex
	own map[string]map[int64]struct{}
}

// OpenSQLite creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func OpenSQLite(dbPath string, opts SQLiteOptions) (*SQLite, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	if opts.Origin == "" {
		opts.Origin = uuid.NewString()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", sqliteDSN(dbPath, opts.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	s := &SQLite{
		db:           db,
		path:         dbPath,
		origin:       opts.Origin,
		pollInterval: opts.PollInterval,
		own:          make(map[string]map[int64]struct{}),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return s, nil
}

// sqliteDSN builds the connection string. Transactions begin IMMEDIATE so a
// read-modify-write holds the write lock from its first read.
func sqliteDSN(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// migrate creates the database schema if it doesn't exist.
func (s *SQLite) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			origin TEXT NOT NULL DEFAULT '',
			rev INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Path returns the resolved database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Origin returns the id stamped on this instance's writes.
func (s *SQLite) Origin() string {
	return s.origin
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value stored under key.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, key, func(string, bool) (string, bool, error) {
		return value, true, nil
	})
}

// Remove deletes key.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot remove %q: %w", key, err)
	}
	return nil
}

// Update reads and rewrites key inside one IMMEDIATE transaction, so
// concurrent writers in other processes are serialized.
func (s *SQLite) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var current string
	ok := true
	err = tx.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		ok = false
	} else if err != nil {
		return fmt.Errorf("storage: cannot read %q: %w", key, err)
	}

	next, write, err := fn(current, ok)
	if err != nil {
		return err
	}
	if !write {
		return nil
	}

	rev, err := upsert(ctx, tx, key, next, s.origin)
	if err != nil {
		return fmt.Errorf("storage: cannot write %q: %w", key, err)
	}
	// Marked before commit so a concurrent poll never sees the revision
	// without knowing it is ours.
	s.markOwn(key, rev)
	if err := tx.Commit(); err != nil {
		s.unmarkOwn(key, rev)
		return fmt.Errorf("storage: cannot commit %q: %w", key, err)
	}
	return nil
}

// upsert writes value and returns the key's new revision.
func upsert(ctx context.Context, tx *sql.Tx, key, value, origin string) (int64, error) {
	var rev int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO kv (key, value, origin, rev, updated_at)
		 VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			origin = excluded.origin,
			rev = kv.rev + 1,
			updated_at = CURRENT_TIMESTAMP
		 RETURNING rev`,
		key, value, origin,
	).Scan(&rev)
	return rev, err
}

func (s *SQLite) markOwn(key string, rev int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	revs, ok := s.own[key]
	if !ok {
		revs = make(map[int64]struct{})
		s.own[key] = revs
	}
	revs[rev] = struct{}{}
}

func (s *SQLite) unmarkOwn(key string, rev int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.own[key], rev)
}

// settleOwn counts this instance's revisions of key in (from, to] and
// forgets every own revision up to to.
func (s *SQLite) settleOwn(key string, from, to int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for rev := range s.own[key] {
		if rev > to {
			continue
		}
		if rev > from {
			n++
		}
		delete(s.own[key], rev)
	}
	return n
}

// resetOwn forgets every own revision of key.
func (s *SQLite) resetOwn(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.own, key)
}

// Watch polls PRAGMA data_version on a dedicated connection. The pragma
// only moves when another connection commits; each move is checked against
// the key's revision. Revisions move by one per write, so a jump larger than
// the number of this instance's own writes in between means another process
// wrote too, even if this instance wrote last.
func (s *SQLite) Watch(ctx context.Context, key string, onChange func()) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("storage: cannot reserve watch connection: %w", err)
	}
	defer conn.Close()

	version, err := dataVersion(ctx, conn)
	if err != nil {
		return err
	}
	rev, _, err := revision(ctx, conn, key)
	if err != nil {
		return err
	}
	s.settleOwn(key, rev, rev)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		v, err := dataVersion(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if v == version {
			continue
		}
		version = v

		r, origin, err := revision(ctx, conn, key)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if r == rev {
			continue
		}

		var foreign bool
		if r > rev {
			foreign = r-rev > s.settleOwn(key, rev, r)
		} else {
			// The key was removed, and maybe recreated, so revisions restarted.
			s.resetOwn(key)
			foreign = origin != s.origin
		}
		rev = r
		if foreign {
			onChange()
		}
	}
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	if err := conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("storage: cannot read data_version: %w", err)
	}
	return v, nil
}

// revision returns the key's revision and last writer. An absent key has
// revision 0, so a removal also counts as a change.
func revision(ctx context.Context, conn *sql.Conn, key string) (int64, string, error) {
	var (
		rev    int64
		origin string
	)
	err := conn.QueryRowContext(ctx, "SELECT rev, origin FROM kv WHERE key = ?", key).Scan(&rev, &origin)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("storage: cannot read revision of %q: %w", key, err)
	}
	return rev, origin, nil
}

var (
	_ Backend = (*SQLite)(nil)
	_ Watcher = (*SQLite)(nil)
)
