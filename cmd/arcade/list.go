package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all games with their best score",
	Long:  `Shows every game in the score catalog with a badge for its current best.`,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	games := a.catalog.List()
	if len(games) == 0 {
		fmt.Println("No games available.")
		return nil
	}

	entries := a.ledger.AllHighScores(cmd.Context())

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, g := range games {
		if len(g.ID) > maxIDLen {
			maxIDLen = len(g.ID)
		}
	}

	// Print header
	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Best")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "----")

	for _, g := range games {
		badge := "-"
		if e, ok := entries[g.ID]; ok {
			badge = g.Format(e)
		}
		fmt.Printf("  %-*s  %s\n", maxIDLen, g.ID, badge)
	}

	fmt.Println()
	fmt.Println("Run 'arcade scores <id>' for details.")
	return nil
}
