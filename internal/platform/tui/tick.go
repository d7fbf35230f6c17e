// Package tui provides the Bubble Tea integration for the arcade score
// ledger: the high-score banner, the scoreboard and the SSH server.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ChangedMsg tells a model that the ledger or the banner panel changed.
type ChangedMsg struct{}

// signal is a coalescing wake-up channel: any number of pokes between two
// reads are delivered as one.
type signal struct {
	ch   chan struct{}
	done chan struct{}
	once sync.Once
}

func newSignal() *signal {
	return &signal{
		ch:   make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (s *signal) poke() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *signal) stop() {
	s.once.Do(func() { close(s.done) })
}

// waitForChange returns a Bubble Tea command that blocks until the next poke.
func waitForChange(s *signal) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.done:
			return nil
		default:
		}
		select {
		case <-s.ch:
			return ChangedMsg{}
		case <-s.done:
			return nil
		}
	}
}
