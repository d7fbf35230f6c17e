package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vovakirdan/arcade-ledger/internal/ledger"
	"github.com/vovakirdan/arcade-ledger/internal/notify"
	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

// ErrGameIDRequired is returned by InitBanner when no game id is given.
var ErrGameIDRequired = errors.New("tui: high score banner requires a game id")

// Banner defaults.
const (
	DefaultBannerLabel = "High Score"
	DefaultBannerEmpty = "No score yet."
	DefaultCelebrate   = 1200 * time.Millisecond

	notePersonalBest = "Personal best"
	noteSetRecord    = "Set a record to lock it in."
)

// BannerOptions configures one banner.
type BannerOptions struct {
	GameID    string
	Label     string
	Format    func(scores.Entry) string
	EmptyText string
}

// HostOption configures a BannerHost.
type HostOption func(*BannerHost)

// WithCelebrate sets how long the new-record pulse lasts.
func WithCelebrate(d time.Duration) HostOption {
	return func(h *BannerHost) {
		if d > 0 {
			h.celebrate = d
		}
	}
}

// shell is the floating panel every banner on a host draws into.
type shell struct {
	label string
	text  string
	note  string
	empty bool
}

// BannerHost owns the shared banner panel of one display surface (a local
// terminal program or one SSH session). The panel is created by the first
// InitBanner and outlives the banners drawing into it.
type BannerHost struct {
	ledger    *ledger.Ledger
	celebrate time.Duration

	mu          sync.Mutex
	built       bool
	shell       shell
	celebrating bool
	pulse       *time.Timer
	pulseGen    uint64

	redraw notify.List[struct{}]
}

// NewBannerHost creates a host drawing scores from l.
func NewBannerHost(l *ledger.Ledger, opts ...HostOption) *BannerHost {
	h := &BannerHost{
		ledger:    l,
		celebrate: DefaultCelebrate,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Banner shows the best score of one game in the host's panel.
type Banner struct {
	host        *BannerHost
	opts        BannerOptions
	unsubscribe func()
	destroyOnce sync.Once
}

// InitBanner builds the panel if needed, shows the current best for
// opts.GameID and keeps it up to date until Destroy.
func (h *BannerHost) InitBanner(ctx context.Context, opts BannerOptions) (*Banner, error) {
	if opts.GameID == "" {
		return nil, ErrGameIDRequired
	}
	if opts.Label == "" {
		opts.Label = DefaultBannerLabel
	}
	if opts.EmptyText == "" {
		opts.EmptyText = DefaultBannerEmpty
	}
	if opts.Format == nil {
		opts.Format = func(e scores.Entry) string { return scores.FormatValue(e.Value) }
	}

	h.mu.Lock()
	h.built = true
	h.shell.label = opts.Label
	h.mu.Unlock()

	b := &Banner{host: h, opts: opts}
	b.Render(h.ledger.HighScore(ctx, opts.GameID))
	b.unsubscribe = h.ledger.OnGame(opts.GameID, b.follow)
	return b, nil
}

// follow redraws on a change from any producer and pulses when there is
// an entry to show.
func (b *Banner) follow(entry *scores.Entry) {
	b.Render(entry)
	if entry != nil {
		b.host.celebrateNow()
	}
}

// GameID returns the game the banner tracks.
func (b *Banner) GameID() string {
	return b.opts.GameID
}

// Submit records value and, when it is a new best, redraws and pulses.
func (b *Banner) Submit(ctx context.Context, value float64, meta map[string]any) ledger.Result {
	res := b.host.ledger.Record(ctx, b.opts.GameID, value, meta)
	if res.Updated {
		b.Render(res.Entry)
		b.host.celebrateNow()
	}
	return res
}

// Render draws entry, or the empty text when entry is nil.
func (b *Banner) Render(entry *scores.Entry) {
	s := shell{label: b.opts.Label}
	if entry == nil {
		s.text = b.opts.EmptyText
		s.note = noteSetRecord
		s.empty = true
	} else {
		s.text = b.opts.Format(*entry)
		s.note = notePersonalBest
	}

	h := b.host
	h.mu.Lock()
	h.shell = s
	h.mu.Unlock()
	h.redraw.Notify(struct{}{})
}

// Destroy stops tracking changes. The host panel stays.
func (b *Banner) Destroy() {
	b.destroyOnce.Do(func() {
		if b.unsubscribe != nil {
			b.unsubscribe()
		}
	})
}

// celebrateNow starts the pulse or restarts it from zero.
func (h *BannerHost) celebrateNow() {
	h.mu.Lock()
	if h.pulse != nil {
		h.pulse.Stop()
	}
	h.celebrating = true
	h.pulseGen++
	gen := h.pulseGen
	h.pulse = time.AfterFunc(h.celebrate, func() {
		h.mu.Lock()
		if h.pulseGen != gen {
			h.mu.Unlock()
			return
		}
		h.celebrating = false
		h.pulse = nil
		h.mu.Unlock()
		h.redraw.Notify(struct{}{})
	})
	h.mu.Unlock()
	h.redraw.Notify(struct{}{})
}

// Celebrating reports whether the new-record pulse is showing.
func (h *BannerHost) Celebrating() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.celebrating
}

// Built reports whether any banner has been initialized on this host.
func (h *BannerHost) Built() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.built
}

// OnRedraw registers fn to run whenever the panel changes, including from
// other goroutines. The returned function unregisters it.
func (h *BannerHost) OnRedraw(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	return h.redraw.Add(func(struct{}) { fn() })
}

// Close stops a running pulse.
func (h *BannerHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pulse != nil {
		h.pulse.Stop()
		h.pulse = nil
	}
	h.pulseGen++
	h.celebrating = false
}

func (h *BannerHost) snapshot() (shell, bool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shell, h.celebrating, h.built
}

// View renders the panel at most width cells wide. It is empty until the
// first banner is initialized.
func (h *BannerHost) View(width int) string {
	s, celebrating, built := h.snapshot()
	if !built {
		return ""
	}
	return renderBanner(s, celebrating, width)
}
