package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-ledger/internal/registry"
	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show best scores",
	Long: `Display the best score of one game with its details, or of every game
that has one.

Examples:
  arcade scores
  arcade scores diner-debate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func runScores(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		gameID := args[0]
		cfg := a.catalog.Get(gameID)
		printEntry(cfg, a.ledger.HighScore(cmd.Context(), gameID))
		return nil
	}

	entries := a.ledger.AllHighScores(cmd.Context())
	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		return nil
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for i, id := range ids {
		if i > 0 {
			fmt.Println()
		}
		e := entries[id]
		printEntry(a.catalog.Get(id), &e)
	}
	return nil
}

// printEntry prints one game's best in detail.
func printEntry(cfg registry.ScoreConfig, e *scores.Entry) {
	fmt.Printf("%s - %s\n", cfg.Title, cfg.Label)
	if e == nil {
		fmt.Printf("  %s\n", cfg.Empty)
		return
	}

	fmt.Printf("  %s\n", cfg.Format(*e))
	fmt.Printf("  value: %s\n", scores.FormatValue(e.Value))
	if t, ok := e.Time(); ok {
		fmt.Printf("  set:   %s\n", t.Local().Format("2006-01-02 15:04:05"))
	}
	if len(e.Meta) > 0 {
		fmt.Printf("  meta:  %s\n", formatMeta(e.Meta))
	}
}

// formatMeta renders metadata as sorted key=value pairs.
func formatMeta(m scores.Meta) string {
	parts := make([]string, 0, len(m))
	for _, k := range m.Keys() {
		data, err := json.Marshal(m[k])
		if err != nil {
			continue
		}
		parts = append(parts, k+"="+string(data))
	}
	return strings.Join(parts, " ")
}
