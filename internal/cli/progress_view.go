// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/gogpu/ggmovie"
)

type renderProgressMsg int

type writeProgressMsg int

type jobDoneMsg struct {
	report ggmovie.Report
	err    error
}

var (
	viewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	viewMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	viewErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	viewOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	viewPanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const maxBarWidth = 60

type progressModel struct {
	title  string
	detail string

	render    int
	write     int
	renderBar progress.Model
	writeBar  progress.Model

	done        bool
	detached    bool
	report      ggmovie.Report
	err         error
	outputLabel string
}

func newProgressModel(req ggmovie.Request) progressModel {
	detail := fmt.Sprintf("%d frames, %dx%d @%gx, %d fps",
		req.TotalFrames(), req.Size.X, req.Size.Y, req.DevicePixelRatio, req.FPS)
	return progressModel{
		title:       "ggmovie " + filepath.Base(req.SceneSource),
		detail:      detail,
		renderBar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		writeBar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		outputLabel: req.OutputDirectory,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := min(max(msg.Width-12, 10), maxBarWidth)
		m.renderBar.Width = w
		m.writeBar.Width = w
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.detached = true
			return m, tea.Quit
		}
		return m, nil
	case renderProgressMsg:
		m.render = int(msg)
		return m, nil
	case writeProgressMsg:
		m.write = int(msg)
		return m, nil
	case jobDoneMsg:
		m.done = true
		m.report = msg.report
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(viewTitleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(viewMutedStyle.Render(m.detail))
	b.WriteString("\n\n")
	b.WriteString("render " + m.renderBar.ViewAs(float64(m.render)/100))
	b.WriteString("\n")
	b.WriteString("write  " + m.writeBar.ViewAs(float64(m.write)/100))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(viewErrorStyle.Render("failed: " + m.err.Error()))
	case m.done:
		b.WriteString(viewOKStyle.Render(fmt.Sprintf("%d frames written to %s (%s)",
			m.report.Written, m.outputLabel, humanize.Bytes(uint64(m.report.Bytes)))))
		if m.report.Failed > 0 {
			b.WriteString("\n")
			b.WriteString(viewErrorStyle.Render(fmt.Sprintf("%d frames failed to write", m.report.Failed)))
		}
	case m.detached:
		b.WriteString(viewMutedStyle.Render("waiting for pending frames..."))
	default:
		b.WriteString(viewMutedStyle.Render("q to stop watching"))
	}
	return viewPanelStyle.Render(b.String()) + "\n"
}

// renderWithProgressView renders req while a bubbletea program shows its
// progress. Leaving the view early does not stop the job; the command still
// waits for every frame to be written.
func renderWithProgressView(req ggmovie.Request, opts []ggmovie.Option) (ggmovie.Report, error) {
	var p *tea.Program
	listener := ggmovie.ListenerFuncs{
		RenderProgress: func(pct int) { p.Send(renderProgressMsg(pct)) },
		WriteProgress:  func(pct int) { p.Send(writeProgressMsg(pct)) },
	}
	p = tea.NewProgram(newProgressModel(req))

	d := ggmovie.NewDriver(append(opts, ggmovie.WithListener(listener))...)
	results := make(chan jobDoneMsg, 1)
	go func() {
		report, err := d.RenderMovie(context.Background(), req)
		results <- jobDoneMsg{report: report, err: err}
		p.Send(jobDoneMsg{report: report, err: err})
	}()

	final, runErr := p.Run()
	if fm, ok := final.(progressModel); ok && fm.detached {
		fmt.Println(viewMutedStyle.Render("waiting for pending frames..."))
	}
	res := <-results
	if runErr != nil && res.err == nil {
		return res.report, fmt.Errorf("progress view: %w", runErr)
	}
	return res.report, res.err
}
