// Package ui is the terminal front-end of a playback.Controller.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xaionaro-go/avcompare/pkg/playback"
	"github.com/xaionaro-go/avcompare/pkg/report"
	"github.com/xaionaro-go/avcompare/pkg/session"
	"github.com/xaionaro-go/avcompare/pkg/transport"
)

const (
	SeekStep        = 5.0 // seconds
	RefreshInterval = 100 * time.Millisecond
	EnvelopeWidth   = 60
)

type refreshMsg time.Time

// AnalysisMsg delivers the result of session.Session.Analysis.
type AnalysisMsg struct {
	Analysis *session.Analysis
	Err      error
}

// ReportMsg delivers the result of a report.Job.
type ReportMsg struct {
	Report *report.Report
	Err    error
}

type Model struct {
	ctx        context.Context
	controller *playback.Controller
	session    *session.Session
	prompt     string

	analysis    *session.Analysis
	analysisErr error
	reportJob   *report.Job
	reportText  string
	reportErr   error

	width  int
	height int
}

// NewModel returns a model driving the controller of s. prompt is used for
// the report requested with the "r" key.
func NewModel(
	ctx context.Context,
	s *session.Session,
	prompt string,
) Model {
	return Model{
		ctx:        ctx,
		controller: s.Controller(),
		session:    s,
		prompt:     prompt,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		refresh(),
		waitAnalysis(m.ctx, m.session),
	)
}

func refresh() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func waitAnalysis(ctx context.Context, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		analysis, err := s.Analysis(ctx)
		return AnalysisMsg{Analysis: analysis, Err: err}
	}
}

func waitReport(ctx context.Context, job *report.Job) tea.Cmd {
	return func() tea.Msg {
		rep, err := job.Wait(ctx)
		return ReportMsg{Report: rep, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case refreshMsg:
		return m, refresh()
	case AnalysisMsg:
		m.analysis = msg.Analysis
		m.analysisErr = msg.Err
	case ReportMsg:
		m.reportJob = nil
		m.reportErr = msg.Err
		if msg.Report != nil {
			m.reportText = msg.Report.Text
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "space":
		m.controller.GlobalPlayPause(m.ctx)
	case "1":
		m.controller.ToggleTransport(m.ctx, transport.IDOriginalVideo)
	case "2":
		m.controller.ToggleTransport(m.ctx, transport.IDMutedVideo)
	case "3":
		m.controller.ToggleTransport(m.ctx, transport.IDIsolatedAudio)
	case "l":
		if m.controller.SyncMode() == playback.SyncModeLinked {
			m.controller.SetSyncMode(m.ctx, playback.SyncModeUnlinked)
		} else {
			m.controller.SetSyncMode(m.ctx, playback.SyncModeLinked)
		}
	case "left":
		m.seekBy(-SeekStep)
	case "right":
		m.seekBy(SeekStep)
	case "r":
		if m.reportJob != nil {
			return m, nil
		}
		job, err := m.session.RequestReport(m.ctx, m.prompt)
		if err != nil {
			m.reportErr = err
			return m, nil
		}
		m.reportJob = job
		m.reportErr = nil
		m.reportText = ""
		return m, waitReport(m.ctx, job)
	}
	return m, nil
}

// seekBy moves every transport relative to the leader position.
func (m Model) seekBy(delta float64) {
	leader := m.controller.Handle(m.controller.Leader())
	if leader == nil {
		for _, id := range transport.IDs() {
			if leader = m.controller.Handle(id); leader != nil {
				break
			}
		}
	}
	if leader == nil {
		return
	}
	target := transport.ClampPosition(leader.Position()+delta, leader.Duration())
	m.controller.Seek(m.ctx, target)
}
