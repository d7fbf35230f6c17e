package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var flagMeta []string

var submitCmd = &cobra.Command{
	Use:   "submit <game> <value>",
	Short: "Record a score for a game",
	Long: `Record a score. It only replaces the stored best when it is strictly
greater. Metadata is given as key=value pairs; values are read as numbers,
booleans or null when they look like one, and as text otherwise.

Examples:
  arcade submit pong 150
  arcade submit diner-debate 310 --meta accuracy=87.6 --meta combo=4`,
	Args: cobra.ExactArgs(2),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringArrayVarP(&flagMeta, "meta", "m", nil, "Metadata as key=value (repeatable)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	gameID := args[0]
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", args[1], err)
	}
	meta, err := parseMeta(flagMeta)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.catalog.Get(gameID)
	res := a.ledger.Record(cmd.Context(), gameID, value, meta)
	switch {
	case res.Updated:
		fmt.Printf("New best for %s: %s\n", cfg.Title, cfg.Format(*res.Entry))
	case res.Entry != nil:
		fmt.Printf("Not a new best. %s stays at %s\n", cfg.Title, cfg.Format(*res.Entry))
	default:
		fmt.Printf("Score not recorded for %s\n", cfg.Title)
	}
	return nil
}

// parseMeta turns key=value pairs into metadata.
func parseMeta(pairs []string) (map[string]any, error) {
	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid meta %q, want key=value", pair)
		}
		meta[k] = parseMetaValue(v)
	}
	return meta, nil
}

func parseMetaValue(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
