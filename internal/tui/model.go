// Package tui is the interactive console for the walkthrough.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/tracewalk/internal/session"
)

const appName = "tracewalk"

type statusKind int

const (
	statusNone statusKind = iota
	statusInfo
	statusError
)

// actionDoneMsg reports that a network step returned. The result itself is
// read back from the controller.
type actionDoneMsg struct {
	action session.Action
	err    error
}

type dashboardOpenedMsg struct {
	err error
}

// Model is the Bubble Tea model for the console.
type Model struct {
	ctx  context.Context
	ctrl *session.Controller

	keys keyMap
	help help.Model

	urlInput   textinput.Model
	editingURL bool
	picker     *productPicker

	status     string
	statusKind statusKind

	width  int
	height int
}

// New builds the console over ctrl. ctx bounds every request it issues.
func New(ctx context.Context, ctrl *session.Controller) Model {
	ti := textinput.New()
	ti.Prompt = "dashboard url: "
	ti.CharLimit = 2048
	ti.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		keys:     newKeyMap(),
		help:     help.New(),
		urlInput: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case actionDoneMsg:
		return m.handleActionDone(msg), nil
	case dashboardOpenedMsg:
		if msg.err != nil {
			m.setStatus(statusError, msg.err.Error())
		} else {
			m.setStatus(statusInfo, "dashboard opened")
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c quits from every mode
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.editingURL {
		return m.handleURLKey(msg)
	}
	if m.picker != nil {
		return m.handlePickerKey(msg), nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.CreateUser):
		m.clearStatus()
		return m, runAction(m.ctx, m.ctrl, session.ActionCreateUser)
	case key.Matches(msg, m.keys.Transfer):
		m.clearStatus()
		return m, runAction(m.ctx, m.ctrl, session.ActionTransfer)
	case key.Matches(msg, m.keys.PlaceOrder):
		m.clearStatus()
		return m, runAction(m.ctx, m.ctrl, session.ActionPlaceOrder)
	case key.Matches(msg, m.keys.Pick):
		s := m.ctrl.Snapshot()
		if !s.Payment.IsOK() {
			m.setStatus(statusError, "transfer funds before choosing a product")
			return m, nil
		}
		m.picker = newProductPicker(s.Product)
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
		m.picker = nil
		m.setStatus(statusInfo, "session reset")
	case key.Matches(msg, m.keys.Dashboard):
		return m, openDashboard(m.ctrl)
	case key.Matches(msg, m.keys.EditURL):
		m.editingURL = true
		m.urlInput.SetValue(m.ctrl.Snapshot().DashboardURL)
		m.urlInput.CursorEnd()
		return m, m.urlInput.Focus()
	}
	return m, nil
}

func (m Model) handleURLKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.ctrl.SetDashboardURL(m.urlInput.Value())
		m.editingURL = false
		m.urlInput.Blur()
		m.setStatus(statusInfo, "dashboard url updated")
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.editingURL = false
		m.urlInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) Model {
	switch m.picker.HandleKey(msg.String()) {
	case pickerActionSelected:
		p := m.picker.Selected()
		m.ctrl.SelectProduct(p)
		m.picker = nil
		m.clearStatus()
	case pickerActionCancelled:
		m.picker = nil
	}
	return m
}

func (m Model) handleActionDone(msg actionDoneMsg) Model {
	switch {
	case msg.err == nil:
		m.clearStatus()
	case errors.Is(msg.err, session.ErrSuperseded):
		m.setStatus(statusInfo, "response discarded after reset")
	default:
		m.setStatus(statusError, msg.err.Error())
	}
	return m
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *Model) clearStatus() {
	m.setStatus(statusNone, "")
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	s := m.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString(headerBarStyle.Render(appName))
	b.WriteString("\n\n")
	b.WriteString(renderBanner(s.DashboardURL))
	b.WriteString("\n")
	if m.editingURL {
		b.WriteString(m.urlInput.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderSections(s, m.picker))

	if m.status != "" {
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return truncateLines(b.String(), m.width)
}

func (m Model) renderStatus() string {
	var style lipgloss.Style
	switch m.statusKind {
	case statusError:
		style = statusErrStyle
	case statusInfo:
		style = statusInfoStyle
	default:
		style = statusBarStyle
	}
	return style.Render(m.status)
}
