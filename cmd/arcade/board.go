package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/arcade-ledger/internal/platform/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive scoreboard",
	Long: `Browse every game's best score. The board follows changes made by other
processes live, and a score can be submitted for the selected game.

Controls:
  Up/Down, j/k, Tab  - Select game
  S                  - Submit a score
  Q/Esc              - Quit`,
	Args: cobra.NoArgs,
	RunE: runBoard,
}

func runBoard(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	go func() {
		if err := a.ledger.Watch(ctx); err != nil {
			a.logger.Warn("stopped watching for score changes", "error", err)
		}
	}()

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width, height = w, h
	}

	host := tui.NewBannerHost(a.ledger, tui.WithCelebrate(a.cfg.Banner.Celebrate))
	return tui.RunScoreboard(ctx, a.ledger, a.catalog, host, width, height)
}
