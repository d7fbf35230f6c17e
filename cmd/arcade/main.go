// arcade reads and records the shared high scores of the arcade cabinet
// games.
//
// Usage:
//
//	arcade list                       - List games with their best score
//	arcade scores [game]              - Show the best score of one or every game
//	arcade submit <game> <value>      - Record a score
//	arcade watch                      - Print score changes as they happen
//	arcade board                      - Interactive scoreboard
//	arcade serve                      - Start SSH scoreboard server
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.arcade/configs, ./configs)
//	--backend <name>    - Storage backend: sqlite, redis or memory
//	--db <path>         - SQLite database path (default: ~/.arcade/scores.db)
//	--redis <addr>      - Redis address
//	--key <key>         - Storage key of the score ledger
//	--catalog <path>    - Score catalog file
//	--log-level <level> - debug, info, warn or error
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagBackend  string
	flagDBPath   string
	flagRedis    string
	flagKey      string
	flagCatalog  string
	flagLogLevel string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Arcade high scores - the shared best-score ledger",
	Long: `Every cabinet game keeps its best score in one shared ledger.
This tool reads it, records new scores and follows changes made by
any other process using the same storage.

Available commands:
  list     - Show all games with their best score
  scores   - Show best scores in detail
  submit   - Record a score for a game
  watch    - Follow score changes
  board    - Interactive scoreboard
  serve    - Start SSH scoreboard server

Examples:
  arcade list
  arcade submit diner-debate 310 --meta accuracy=87.6 --meta combo=4
  arcade scores diner-debate
  arcade watch --backend redis --redis localhost:6379
  arcade serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to config file")
	pf.StringVar(&flagBackend, "backend", "", "Storage backend: sqlite, redis or memory")
	pf.StringVar(&flagDBPath, "db", "", "Path to scores database (default ~/.arcade/scores.db)")
	pf.StringVar(&flagRedis, "redis", "", "Redis address (host:port)")
	pf.StringVar(&flagKey, "key", "", "Storage key of the score ledger")
	pf.StringVar(&flagCatalog, "catalog", "", "Path to score catalog file")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(serveCmd)
}
