package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print score changes as they happen",
	Long: `Follow the ledger and print every new best, whether it was recorded
by this process or by any other one sharing the storage. Stop with Ctrl+C.

The memory backend cannot see other processes, so watch needs sqlite or redis.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	unsubscribe := a.ledger.OnChange(func(gameID string, e *scores.Entry) {
		cfg := a.catalog.Get(gameID)
		if e == nil {
			fmt.Printf("%s  %s: %s\n", time.Now().Format("15:04:05"), cfg.Title, cfg.Empty)
			return
		}
		fmt.Printf("%s  %s: %s\n", time.Now().Format("15:04:05"), cfg.Title, cfg.Format(*e))
	})
	defer unsubscribe()

	fmt.Printf("Watching %q (Ctrl+C to stop)\n", a.ledger.Key())
	if err := a.ledger.Watch(cmd.Context()); err != nil {
		return err
	}
	if cmd.Context().Err() == nil {
		return fmt.Errorf("the %s backend does not report changes from other processes", a.cfg.Storage.Backend)
	}
	return nil
}
