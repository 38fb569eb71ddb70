// Package ui renders interactive terminal output for long-running
// steps. Only the download progress bar lives here for now.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jukaradayi/abkhazia/internal/fetch"
)

const maxBarWidth = 60

var urlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

type progressMsg float64

type doneMsg struct{ err error }

type downloadModel struct {
	url      string
	progress progress.Model
	done     bool
	err      error
}

func (m downloadModel) Init() tea.Cmd {
	return nil
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 8
		if m.progress.Width > maxBarWidth {
			m.progress.Width = maxBarWidth
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		return m, m.progress.SetPercent(float64(msg))

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Sequence(m.progress.SetPercent(1.0), tea.Quit)

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m downloadModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("\n  %s\n  %s\n\n", urlStyle.Render(m.url), m.progress.View())
}

// Download fetches url to dest while rendering a progress bar. Closing
// the program early (ctrl+c) cancels the transfer.
func Download(ctx context.Context, url, dest string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := downloadModel{
		url:      url,
		progress: progress.New(progress.WithDefaultGradient()),
	}
	p := tea.NewProgram(m)

	errc := make(chan error, 1)
	go func() {
		err := fetch.Fetch(ctx, url, dest, func(frac float64) {
			p.Send(progressMsg(frac))
		})
		errc <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	cancel()
	return <-errc
}
