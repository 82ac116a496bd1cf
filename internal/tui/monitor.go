// Package tui renders a live terminal view of a running simulation: a
// Bubble Tea program observing an engine.Engine stepped on a background
// goroutine, in the teacher's tick-driven Update/View idiom.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/robosim/internal/engine"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Sample is one system's state at one accepted step, captured by the
// engine.Callback returned from NewSampler.
type Sample struct {
	System string
	T      float64
	Q, V, A []float64
}

// NewSampler builds an engine.Callback that copies (t, q, v, a) onto ch
// under sysName, dropping the sample rather than blocking the
// simulation goroutine if the renderer is behind (spec.md §5: the
// engine's own step loop never blocks on an observer).
func NewSampler(sysName string, ch chan<- Sample) engine.Callback {
	return func(t float64, q, v, a []float64) bool {
		select {
		case ch <- Sample{System: sysName, T: t, Q: clone(q), V: clone(v), A: clone(a)}:
		default:
		}
		return true
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

type doneMsg struct{ err error }
type sampleMsg Sample

type model struct {
	samples  <-chan Sample
	done     <-chan error
	duration float64

	latest   map[string]Sample
	order    []string
	err      error
	finished bool

	start time.Time
}

// Run drives a Bubble Tea program that renders samples arriving on ch
// until done fires, then exits and returns done's error (nil on a clean
// completion). Call this after starting the engine's Simulate on its
// own goroutine.
func Run(sysNames []string, ch <-chan Sample, done <-chan error, duration float64) error {
	m := model{
		samples:  ch,
		done:     done,
		duration: duration,
		latest:   make(map[string]Sample, len(sysNames)),
		order:    sysNames,
		start:    time.Now(),
	}
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForSample(m.samples), waitForDone(m.done))
}

func waitForSample(ch <-chan Sample) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return sampleMsg(s)
	}
}

func waitForDone(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: <-ch}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case sampleMsg:
		s := Sample(msg)
		m.latest[s.System] = s
		return m, waitForSample(m.samples)
	case doneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(cyan.Render("robosim monitor") + dim.Render("  (q to quit)") + "\n\n")

	for _, name := range m.order {
		s, ok := m.latest[name]
		if !ok {
			b.WriteString(dim.Render(fmt.Sprintf("%-12s waiting for first step\n", name)))
			continue
		}
		pct := 0.0
		if m.duration > 0 {
			pct = s.T / m.duration * 100
			if pct > 100 {
				pct = 100
			}
		}
		b.WriteString(white.Render(fmt.Sprintf("%-12s", name)))
		b.WriteString(green.Render(fmt.Sprintf(" t=%8.4f", s.T)))
		b.WriteString(yellow.Render(fmt.Sprintf(" (%5.1f%%)", pct)))
		b.WriteString(dim.Render(fmt.Sprintf("  nq=%d nv=%d\n", len(s.Q), len(s.V))))
	}

	b.WriteString("\n")
	elapsed := time.Since(m.start).Round(time.Millisecond)
	b.WriteString(dim.Render(fmt.Sprintf("wall clock: %s\n", elapsed)))

	if m.finished {
		if m.err != nil {
			b.WriteString(red.Render(fmt.Sprintf("stopped: %v\n", m.err)))
		} else {
			b.WriteString(green.Render("simulation complete\n"))
		}
	}
	return b.String()
}
