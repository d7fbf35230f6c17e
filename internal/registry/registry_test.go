package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

func entry(value float64, meta map[string]any) scores.Entry {
	return scores.Entry{Value: value, Meta: scores.SanitizeMeta(meta)}
}

func TestEveryGameFormatsZero(t *testing.T) {
	games := List()
	require.NotEmpty(t, games)

	for _, cfg := range games {
		t.Run(cfg.ID, func(t *testing.T) {
			assert.NotEmpty(t, cfg.Label)
			assert.NotEmpty(t, cfg.Empty)
			assert.NotEmpty(t, cfg.Title)

			out := cfg.Format(scores.Entry{Value: 0, Meta: scores.Meta{}})
			assert.NotEmpty(t, out)
			assert.NotContains(t, out, "<no value>")
			assert.NotContains(t, out, "\n")
		})
	}
}

func TestListIsSorted(t *testing.T) {
	games := List()
	for i := 1; i < len(games); i++ {
		assert.Less(t, games[i-1].ID, games[i].ID)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		game string
		e    scores.Entry
		want string
	}{
		{"amore-express", entry(1, nil), "1 delivery"},
		{"amore-express", entry(12, nil), "12 deliveries"},
		{"captains-echo", entry(88.5, nil), "Score 88.5"},
		{"dialtone-honor-roll", entry(40, map[string]any{"contexts": 1}), "40 pts · 1 context"},
		{"dialtone-honor-roll", entry(40, nil), "40 pts · 0 contexts"},
		{"diner-debate", entry(310, map[string]any{"accuracy": 87.6, "combo": 4}), "310 pts · 88% accuracy · combo 4"},
		{"diner-debate", entry(310, map[string]any{"accuracy": "87"}), "310 pts · 0% accuracy · combo 0"},
		{"deepcore-descent", entry(120, map[string]any{"powerBursts": 1, "hull": 64}), "120 m · 1 burst · 64% hull"},
		{"deepcore-descent", entry(120, nil), "120 m · 0 bursts · hull unknown"},
		{"hoverboard-pursuit", entry(0, map[string]any{"display": "01:02.003"}), "01:02.003"},
		{"hoverboard-pursuit", entry(0, map[string]any{"finalTimeMs": 62003}), "01:02.003"},
		{"hoverboard-pursuit", entry(999000, nil), "00:01.000"},
		{"k-mart-countdown", entry(75, map[string]any{"bestMultiplier": 2.26}), "75 pts · ×2.3 best"},
		{"k-mart-countdown", entry(75, map[string]any{"multiplier": 3}), "75 pts · ×3.0 best"},
		{"k-mart-countdown", entry(75, nil), "75 pts"},
		{"personal-ad-trap", entry(9, map[string]any{"daysRemaining": 3, "wrongAccusations": 1}), "Score 9 · 3d left · 1 miss"},
		{"personal-ad-trap", entry(9, nil), "Score 9 · time unknown · clean run"},
		{"tailing-the-trash", entry(6, map[string]any{"suspicion": 40}), "6 logs · 40% peak"},
		{"three-fugitives", entry(5, map[string]any{"turns": 2}), "5 tempo · 2 turns"},
		{"twenty-five-thousand-bulbs", entry(25000, map[string]any{"success": true}), "25,000 watts · Full glow"},
		{"twenty-five-thousand-bulbs", entry(120, nil), "120 watts · Brownout"},
		{"vendetta-convoy", entry(5, nil), "5 / 8"},
		{"vendetta-convoy", entry(5, map[string]any{"total": 10}), "5 / 10"},
		{"voice-box-swap", entry(50, map[string]any{"longestCombo": 1, "bestRisky": 2}), "50 pts · 1 combo · Risky +2"},
		{"voice-box-swap", entry(50, map[string]any{"longestCombo": 6}), "50 pts · 6 combo streak"},
		{"whispers-garden", entry(80, map[string]any{"focusBursts": 1, "bonuses": 2}), "80% · 1 focus · 2 bonuses"},
		{"wind-beneath-my-wings", entry(900, map[string]any{"accuracy": 91.5, "crescendos": 1}), "900 applause · 91.5% accuracy · 1 crescendo"},
	}
	for _, tt := range tests {
		t.Run(tt.game+"/"+tt.want, func(t *testing.T) {
			cfg, ok := Lookup(tt.game)
			require.True(t, ok)
			assert.Equal(t, tt.want, cfg.Format(tt.e))
		})
	}
}

func TestFallback(t *testing.T) {
	cfg := Get("not-a-game")
	assert.False(t, Exists("not-a-game"))
	assert.Equal(t, DefaultLabel, cfg.Label)
	assert.Equal(t, DefaultEmpty, cfg.Empty)
	assert.Equal(t, "42.5", cfg.Format(entry(42.5, nil)))
}

func TestCatalogRegister(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(ScoreConfig{ID: "pong", Template: "{{num .Value}} pts"}))

	err := c.Register(ScoreConfig{ID: "pong"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	assert.Error(t, c.Register(ScoreConfig{}))
	assert.Error(t, c.Register(ScoreConfig{ID: "broken", Template: "{{num .Value"}))
	assert.Equal(t, 1, c.Len())

	cfg, ok := c.Lookup("pong")
	require.True(t, ok)
	assert.Equal(t, DefaultLabel, cfg.Label)
	assert.Equal(t, "pong", cfg.Title)
	assert.Equal(t, "3 pts", cfg.Format(entry(3, nil)))
}

func TestFormatFallsBackWhenTemplateFails(t *testing.T) {
	cfg := ScoreConfig{ID: "odd", Template: `{{index .Meta "x" "y"}}`}
	assert.Equal(t, "7", cfg.Format(entry(7, nil)))

	// Configs built by hand compile on first use.
	cfg = ScoreConfig{ID: "manual", Template: "#{{num .Value}}"}
	assert.Equal(t, "#7", cfg.Format(entry(7, nil)))
}

func TestLoadCatalog(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, len(List()), c.Len())

	require.NoError(t, os.MkdirAll("configs", 0o755))
	local := "games:\n  - id: pong\n    label: Rally\n    format: '{{num .Value}} hits'\n"
	require.NoError(t, os.WriteFile(filepath.Join("configs", CatalogFileName), []byte(local), 0o644))

	c, err = LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "Rally", c.Get("pong").Label)
	assert.Equal(t, "12 hits", c.Get("pong").Format(entry(12, nil)))

	custom := filepath.Join(t.TempDir(), "mine.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("games:\n  - id: a\n  - id: a\n"), 0o644))
	_, err = LoadCatalog(custom)
	assert.True(t, errors.Is(err, ErrDuplicate))

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultCatalogYAMLDocumentsHelpers(t *testing.T) {
	text := string(DefaultCatalogYAML())
	for name := range funcs {
		assert.True(t, strings.Contains(text, name), "helper %s undocumented", name)
	}
}

func TestClock(t *testing.T) {
	assert.Equal(t, "00:00.000", clock(-5))
	assert.Equal(t, "10:00.001", clock(600001))
	assert.Equal(t, "00:00.000", clock(0))
}
