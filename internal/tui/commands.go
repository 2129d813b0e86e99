package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tracewalk/internal/session"
)

func runAction(ctx context.Context, ctrl *session.Controller, a session.Action) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch a {
		case session.ActionCreateUser:
			_, err = ctrl.CreateUser(ctx)
		case session.ActionTransfer:
			_, err = ctrl.TransferFunds(ctx)
		case session.ActionPlaceOrder:
			_, err = ctrl.PlaceOrder(ctx)
		}
		return actionDoneMsg{action: a, err: err}
	}
}

func openDashboard(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return dashboardOpenedMsg{err: ctrl.OpenDashboard()}
	}
}
