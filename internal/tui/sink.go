package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xenking/storefront/internal/view"
)

// pageMsg delivers a rendered page to the program.
type pageMsg view.Page

// Sink is a view.Sink feeding a bubbletea program. It keeps only the
// newest undelivered page, so Render never blocks the session loop even
// when the terminal is slow to redraw.
type Sink struct {
	ch   chan view.Page
	done chan struct{}
	once sync.Once
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{
		ch:   make(chan view.Page, 1),
		done: make(chan struct{}),
	}
}

// Render replaces any undelivered page with p.
func (s *Sink) Render(p view.Page) {
	for {
		select {
		case s.ch <- p:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Wait returns a command that delivers the next page. It yields nil once
// the Sink is closed.
func (s *Sink) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-s.ch:
			return pageMsg(p)
		case <-s.done:
			return nil
		}
	}
}

// Close releases a pending Wait.
func (s *Sink) Close() {
	s.once.Do(func() { close(s.done) })
}
