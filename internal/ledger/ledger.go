// Package ledger implements the shared high-score ledger: one JSON blob,
// keyed by game id, holding the best score each game has seen.
//
// Scores only ever go up. Record replaces an entry when the new value is
// strictly greater than the stored one and then notifies every subscriber
// before returning. Changes written by other processes sharing the same
// storage are picked up by Watch (or HandleStorageChange) and broadcast on
// the same subscription stream.
package ledger

import (
	"context"
	"io"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/arcade-ledger/internal/notify"
	"github.com/vovakirdan/arcade-ledger/internal/scores"
	"github.com/vovakirdan/arcade-ledger/internal/storage"
)

// DefaultKey is the storage key the ledger blob is kept under.
const DefaultKey = "1989-shared-high-scores"

// Result is returned by Record.
type Result struct {
	// Updated is true when the submitted value became the new best.
	Updated bool

	// Entry is the entry stored after the call, or nil if there is none.
	Entry *scores.Entry
}

// Handler receives every change. entry is nil when a changed record
// could not be read back as a valid entry.
type Handler func(gameID string, entry *scores.Entry)

type change struct {
	gameID string
	entry  *scores.Entry
}

// Ledger is the high-score service. It is safe for concurrent use.
type Ledger struct {
	backend storage.Backend
	key     string
	clock   Clock
	logger  *log.Logger
	changes notify.List[change]
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithKey sets the storage key of the ledger blob.
func WithKey(key string) Option {
	return func(l *Ledger) {
		if key != "" {
			l.key = key
		}
	}
}

// WithClock sets the clock used for UpdatedAt timestamps.
func WithClock(c Clock) Option {
	return func(l *Ledger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithLogger sets the logger for storage diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a ledger on top of backend. Pick the backend with
// storage.Select so an unusable store degrades to memory up front.
func New(backend storage.Backend, opts ...Option) *Ledger {
	l := &Ledger{
		backend: backend,
		key:     DefaultKey,
		clock:   DefaultClock{},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Key returns the storage key of the ledger blob.
func (l *Ledger) Key() string {
	return l.key
}

// Backend returns the storage backend in use.
func (l *Ledger) Backend() storage.Backend {
	return l.backend
}

func (l *Ledger) now() string {
	return scores.FormatTimestamp(l.clock.Now())
}

// load reads the blob. Read failures and corrupt data both yield an empty
// ledger; neither is surfaced to callers.
func (l *Ledger) load(ctx context.Context) blob {
	raw, ok, err := l.backend.Get(ctx, l.key)
	if err != nil {
		l.logger.Warn("failed to read shared high scores", "key", l.key, "error", err)
		return blob{}
	}
	return l.decode(raw, ok)
}

func (l *Ledger) decode(raw string, ok bool) blob {
	b, corrupt := parseBlob(raw, ok)
	if corrupt {
		l.logger.Warn("failed to parse shared high scores, treating as empty", "key", l.key, "bytes", len(raw))
	}
	return b
}

// HighScore returns the best entry for gameID, or nil if there is none.
func (l *Ledger) HighScore(ctx context.Context, gameID string) *scores.Entry {
	if gameID == "" {
		return nil
	}
	return l.load(ctx).entry(gameID, l.now())
}

// AllHighScores returns every valid entry keyed by game id.
func (l *Ledger) AllHighScores(ctx context.Context) map[string]scores.Entry {
	return l.load(ctx).entries(l.now())
}

// Record submits value for gameID. Metadata is sanitized: members that are
// not numbers, strings, booleans, null or nested maps of those are dropped.
func (l *Ledger) Record(ctx context.Context, gameID string, value float64, meta map[string]any) Result {
	return l.RecordMeta(ctx, gameID, value, scores.SanitizeMeta(meta))
}

// RecordMeta is Record for callers that already hold sanitized metadata.
func (l *Ledger) RecordMeta(ctx context.Context, gameID string, value float64, meta scores.Meta) Result {
	if gameID == "" || math.IsNaN(value) || math.IsInf(value, 0) {
		return Result{Entry: l.HighScore(ctx, gameID)}
	}

	var result Result
	err := l.backend.Update(ctx, l.key, func(raw string, ok bool) (string, bool, error) {
		b := l.decode(raw, ok)
		current := b.entry(gameID, l.now())
		if current != nil && current.Value >= value {
			result = Result{Entry: current}
			return "", false, nil
		}

		entry := scores.Entry{
			Value:     value,
			Meta:      meta.Clone(),
			UpdatedAt: l.now(),
		}
		next, err := b.with(gameID, entry)
		if err != nil {
			return "", false, err
		}
		result = Result{Updated: true, Entry: &entry}
		return next, true, nil
	})
	if err != nil {
		l.logger.Warn("failed to record high score", "game", gameID, "value", value, "error", err)
		return Result{Entry: l.HighScore(ctx, gameID)}
	}

	if result.Updated {
		l.notify(gameID, result.Entry)
	}
	return result
}

func (l *Ledger) notify(gameID string, entry *scores.Entry) {
	l.changes.Notify(change{gameID: gameID, entry: entry})
}

// OnChange registers h for every change to any game. The returned function
// unsubscribes; calling it more than once is harmless.
func (l *Ledger) OnChange(h Handler) func() {
	if h == nil {
		return func() {}
	}
	return l.changes.Add(func(c change) {
		h(c.gameID, cloneEntry(c.entry))
	})
}

// OnGame registers h for changes to gameID only.
func (l *Ledger) OnGame(gameID string, h func(entry *scores.Entry)) func() {
	if gameID == "" || h == nil {
		return func() {}
	}
	return l.OnChange(func(id string, entry *scores.Entry) {
		if id == gameID {
			h(entry)
		}
	})
}

// HandleStorageChange is the bridge for change signals coming from the
// storage layer. Signals for other keys are ignored; for the ledger key
// the blob is re-read and every member in it is broadcast, with a nil
// entry for members that are not valid records.
func (l *Ledger) HandleStorageChange(ctx context.Context, key string) {
	if key != l.key {
		return
	}
	records := l.load(ctx).records(l.now())
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	l.logger.Debug("shared high scores changed elsewhere", "key", key, "entries", len(ids))
	for _, id := range ids {
		l.notify(id, records[id])
	}
}

// Watch forwards change signals from the backend to HandleStorageChange
// until ctx is done. It returns immediately when the backend cannot observe
// other writers (the in-memory fallback).
func (l *Ledger) Watch(ctx context.Context) error {
	w, ok := l.backend.(storage.Watcher)
	if !ok {
		l.logger.Debug("storage backend does not report external changes")
		return nil
	}
	return w.Watch(ctx, l.key, func() {
		l.HandleStorageChange(ctx, l.key)
	})
}

func cloneEntry(e *scores.Entry) *scores.Entry {
	if e == nil {
		return nil
	}
	c := e.Clone()
	return &c
}
