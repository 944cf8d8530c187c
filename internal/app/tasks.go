package app

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/zhubert/parley/internal/async"
	pe "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/notification"
	"github.com/zhubert/parley/internal/ui"
	"github.com/zhubert/parley/internal/ui/modals"
)

// taskResultMsg carries a finished task back to the event loop.
type taskResultMsg struct {
	result async.Result
}

// failing is implemented by results that can report a user-facing failure.
type failing interface {
	Err() error
}

// delivering is implemented by the submit result.
type delivering interface {
	Delivered() bool
	Reply() string
}

// runTask turns task into a command. The task runs off the event loop with
// the configured request timeout; its result comes back as taskResultMsg.
func (m *Model) runTask(task async.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	parent := m.ctx
	timeout := m.config.GetRequestTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return taskResultMsg{result: task(ctx)}
	}
}

// handleTaskResult folds a result into its component, then reports it.
func (m *Model) handleTaskResult(msg taskResultMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	follow := msg.result.Apply()
	cmds = append(cmds, m.runTask(follow))

	if d, ok := msg.result.(delivering); ok {
		// A failed submit already shows the apology in the transcript.
		if d.Delivered() {
			m.chat.ClearInput()
			cmds = append(cmds, m.notifyReply(d.Reply()))
		}
	} else if f, ok := msg.result.(failing); ok {
		if err := f.Err(); err != nil {
			logger.WithComponent("app").Warn("task failed", "error", err, "kind", pe.GetKind(err).String())
			cmds = append(cmds, m.flash(ui.FlashError, pe.Message(err)))
			// A failed clear leaves its prompt open to retry.
			if _, ok := m.modal.State.(*modals.ConfirmClearState); ok {
				m.modal.SetError(pe.Message(err))
			}
		}
	}

	if m.refreshPending {
		m.refreshPending = false
		cmds = append(cmds, m.runTask(m.convs.Refresh()))
	}

	m.syncViews()
	return m, tea.Batch(cmds...)
}

// notifyReply sends a desktop notification for a reply when enabled.
func (m *Model) notifyReply(reply string) tea.Cmd {
	if !m.config.GetNotificationsEnabled() {
		return nil
	}
	title := m.activeTitle()
	return func() tea.Msg {
		_ = notification.ReplyReceived(title, reply)
		return nil
	}
}
