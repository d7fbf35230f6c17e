package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/arcade-ledger/internal/ledger"
	"github.com/vovakirdan/arcade-ledger/internal/registry"
	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 100 // Minimum width to show the banner beside the table
	bannerWidth        = 36  // Width of the banner panel
	titleColumnWidth   = 26
	bestColumnWidth    = 30
	dateColumnWidth    = 12
	chromeHeight       = 10 // Title, input, status, help and borders
)

// live is the part of the scoreboard shared by every copy of the model.
type live struct {
	mu     sync.Mutex
	banner *Banner
	unsubs []func()
	closed bool
}

// ScoreboardModel is the Bubble Tea model listing every game's best score
// with a banner for the selected one. It refreshes whenever the ledger
// changes, whoever made the change.
type ScoreboardModel struct {
	ctx     context.Context
	ledger  *ledger.Ledger
	catalog *registry.Catalog
	host    *BannerHost
	live    *live
	sig     *signal

	games   []registry.ScoreConfig
	entries map[string]scores.Entry
	cursor  int

	table      table.Model
	input      textinput.Model
	submitting bool
	status     string
	help       help.Model
	keys       ScoreboardKeyMap

	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewScoreboardModel creates a new scoreboard model. Call Close when the
// program using it has exited.
func NewScoreboardModel(ctx context.Context, l *ledger.Ledger, catalog *registry.Catalog, host *BannerHost, width, height int) ScoreboardModel {
	if catalog == nil {
		catalog = registry.NewCatalog()
	}
	if host == nil {
		host = NewBannerHost(l)
	}

	input := textinput.New()
	input.Placeholder = "score"
	input.CharLimit = 24
	input.Prompt = "New score: "

	h := help.New()
	h.ShowAll = false

	sig := newSignal()
	m := ScoreboardModel{
		ctx:         ctx,
		ledger:      l,
		catalog:     catalog,
		host:        host,
		live:        &live{},
		sig:         sig,
		input:       input,
		help:        h,
		keys:        DefaultScoreboardKeyMap(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	m.live.unsubs = append(m.live.unsubs,
		l.OnChange(func(string, *scores.Entry) { sig.poke() }),
		host.OnRedraw(sig.poke),
	)

	m.table = m.createTable()
	m.refresh()
	m.selectGame()

	return m
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Game", Width: titleColumnWidth},
		{Title: "Best", Width: bestColumnWidth},
		{Title: "Set", Width: dateColumnWidth},
	}

	height := m.height - chromeHeight
	if !m.showSidebar {
		height -= 5 // Banner below the table
	}
	if height < 3 {
		height = 3
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorAccent).
		Background(colorSelected).
		Bold(false)
	t.SetStyles(s)

	return t
}

// refresh re-reads the ledger and rebuilds the rows, keeping the selection
// on the same game.
func (m *ScoreboardModel) refresh() {
	selected := m.selectedID()

	m.entries = m.ledger.AllHighScores(m.ctx)
	m.games = m.catalog.List()

	// Games that recorded scores without a catalog entry still show up.
	var extra []string
	for id := range m.entries {
		if !m.catalog.Exists(id) {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		m.games = append(m.games, registry.Fallback(id))
	}

	m.cursor = 0
	for i, g := range m.games {
		if g.ID == selected {
			m.cursor = i
			break
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current entries.
func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.games))
	for i, g := range m.games {
		best, set := g.Empty, "-"
		if e, ok := m.entries[g.ID]; ok {
			best = g.Format(e)
			if t, ok := e.Time(); ok {
				set = t.Local().Format("Jan 02 15:04")
			}
		}
		rows[i] = table.Row{g.Title, best, set}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(m.cursor)
	}
}

func (m ScoreboardModel) selectedID() string {
	if m.cursor < 0 || m.cursor >= len(m.games) {
		return ""
	}
	return m.games[m.cursor].ID
}

// selectGame points the banner at the selected game.
func (m *ScoreboardModel) selectGame() {
	id := m.selectedID()

	m.live.mu.Lock()
	defer m.live.mu.Unlock()

	if m.live.closed {
		return
	}
	if m.live.banner != nil {
		if m.live.banner.GameID() == id {
			return
		}
		m.live.banner.Destroy()
		m.live.banner = nil
	}
	if id == "" {
		return
	}

	cfg := m.games[m.cursor]
	b, err := m.host.InitBanner(m.ctx, BannerOptions{
		GameID:    cfg.ID,
		Label:     cfg.Label,
		Format:    cfg.Format,
		EmptyText: cfg.Empty,
	})
	if err != nil {
		return
	}
	m.live.banner = b
}

func (m ScoreboardModel) currentBanner() *Banner {
	m.live.mu.Lock()
	defer m.live.mu.Unlock()
	return m.live.banner
}

// move changes the selected game by delta, wrapping around.
func (m *ScoreboardModel) move(delta int) {
	if len(m.games) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.games)) % len(m.games)
	m.table.SetCursor(m.cursor)
	m.status = ""
	m.selectGame()
}

// Init starts listening for ledger changes.
func (m ScoreboardModel) Init() tea.Cmd {
	return waitForChange(m.sig)
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg:
		m.refresh()
		return m, waitForChange(m.sig)

	case tea.KeyMsg:
		if m.submitting {
			return m.updateInput(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.NextGame):
			m.move(1)
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.PrevGame):
			m.move(-1)
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			if m.selectedID() == "" {
				return m, nil
			}
			m.submitting = true
			m.status = ""
			m.input.SetValue("")
			cmd := m.input.Focus()
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// updateInput handles keys while the score prompt is open.
func (m ScoreboardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.submitting = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.submitting = false
		m.input.Blur()
		m.status = m.submit(strings.TrimSpace(m.input.Value()))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit records raw for the selected game and returns a status line.
func (m *ScoreboardModel) submit(raw string) string {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Sprintf("%q is not a score", raw)
	}
	b := m.currentBanner()
	if b == nil {
		return ""
	}
	res := b.Submit(m.ctx, value, nil)
	m.refresh()

	cfg := m.games[m.cursor]
	switch {
	case res.Updated:
		return "New record: " + cfg.Format(*res.Entry)
	case res.Entry != nil:
		return "Best stays at " + cfg.Format(*res.Entry)
	default:
		return "Score not recorded"
	}
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(centerText("HIGH SCORES", m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	tableView := tableStyle.Render(m.renderTableContent())
	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tableView, "  ", m.host.View(bannerWidth)))
	} else {
		b.WriteString(tableView)
		b.WriteString("\n")
		b.WriteString(m.host.View(min(bannerWidth, max(m.width, minBannerWidth))))
	}
	b.WriteString("\n")

	if m.submitting {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	if len(m.games) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No games in the catalog.")
	}
	return m.table.View()
}

// Selected returns the id of the selected game.
func (m ScoreboardModel) Selected() string {
	return m.selectedID()
}

// Status returns the last submit status line.
func (m ScoreboardModel) Status() string {
	return m.status
}

// IsQuitting returns true if user wants to quit.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// Close releases the banner and every subscription. It is safe to call on
// any copy of the model and more than once.
func (m ScoreboardModel) Close() {
	m.live.mu.Lock()
	if m.live.closed {
		m.live.mu.Unlock()
		return
	}
	m.live.closed = true
	if m.live.banner != nil {
		m.live.banner.Destroy()
		m.live.banner = nil
	}
	unsubs := m.live.unsubs
	m.live.unsubs = nil
	m.live.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	m.sig.stop()
	m.host.Close()
}

// RunScoreboard runs the scoreboard until the user quits.
func RunScoreboard(ctx context.Context, l *ledger.Ledger, catalog *registry.Catalog, host *BannerHost, width, height int) error {
	model := NewScoreboardModel(ctx, l, catalog, host, width, height)
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
