// Package conversations manages the sidebar's list of conversations.
//
// The Manager never changes session state itself; selection, creation and
// deletion notices go through Hooks, which the session controller implements.
package conversations

import (
	"context"
	"log/slog"
	"time"

	"github.com/zhubert/parley/internal/async"
	pe "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
)

// Hooks is the session side of the sidebar.
type Hooks interface {
	SelectConversation(id string) async.Task
	CreateConversation() async.Task
	OnConversationDeleted(id string)
}

// PendingDelete is a delete awaiting the user's confirmation.
type PendingDelete struct {
	ID    string
	Title string
}

// Manager holds conversation summaries. Like session.Controller it must be
// driven from a single goroutine.
type Manager struct {
	store store.Store
	hooks Hooks
	log   *slog.Logger

	summaries []store.Summary
	loaded    bool

	// seq numbers refreshes in the order they were issued; applied is the
	// newest one whose response has been used.
	seq      uint64
	applied  uint64
	inFlight int

	pending  *PendingDelete
	deleting bool
}

// New creates a Manager that lists from s and reports to hooks.
func New(s store.Store, hooks Hooks) *Manager {
	return &Manager{
		store: s,
		hooks: hooks,
		log:   logger.WithComponent("conversations"),
	}
}

// Summaries returns a copy of the current list, newest first as served.
func (m *Manager) Summaries() []store.Summary {
	return append([]store.Summary(nil), m.summaries...)
}

// Loading reports whether any refresh is in flight.
func (m *Manager) Loading() bool { return m.inFlight > 0 }

// Loaded reports whether a refresh has ever succeeded.
func (m *Manager) Loaded() bool { return m.loaded }

// Title returns the title of a listed conversation.
func (m *Manager) Title(id string) (string, bool) {
	for _, s := range m.summaries {
		if s.ID == id {
			return s.Title, true
		}
	}
	return "", false
}

// PendingConfirmation returns the delete awaiting confirmation, if any.
func (m *Manager) PendingConfirmation() (PendingDelete, bool) {
	if m.pending == nil {
		return PendingDelete{}, false
	}
	return *m.pending, true
}

// Deleting reports whether a confirmed delete is in flight.
func (m *Manager) Deleting() bool { return m.deleting }

// Refresh fetches the list. Responses that arrive after a newer one has
// been applied are dropped.
func (m *Manager) Refresh() async.Task {
	m.seq++
	seq := m.seq
	m.inFlight++

	return func(ctx context.Context) async.Result {
		summaries, err := m.store.ListConversations(ctx)
		return &refreshResult{m: m, seq: seq, summaries: summaries, err: err}
	}
}

type refreshResult struct {
	m         *Manager
	seq       uint64
	summaries []store.Summary
	err       error
	stale     bool
}

func (r *refreshResult) Apply() async.Task {
	m := r.m
	m.inFlight--
	if r.seq < m.applied {
		r.stale = true
		m.log.Debug("discarding out-of-order conversation list", "seq", r.seq, "applied", m.applied)
		return nil
	}
	if r.err != nil {
		m.log.Error("failed to list conversations", "error", r.err)
		return nil
	}
	m.applied = r.seq
	m.summaries = r.summaries
	m.loaded = true
	return nil
}

// Err returns the refresh failure, if any.
func (r *refreshResult) Err() error {
	if r.stale || r.err == nil {
		return nil
	}
	return pe.E(pe.Op("conversations.Refresh"), pe.GetKind(r.err), "couldn't load conversations", r.err)
}

// Select opens a conversation through the session.
func (m *Manager) Select(id string) async.Task {
	return m.hooks.SelectConversation(id)
}

// NewConversation creates a conversation through the session.
func (m *Manager) NewConversation() async.Task {
	return m.hooks.CreateConversation()
}

// RequestDelete asks for confirmation before deleting id. It returns false
// when id is not in the list or another delete is in flight.
func (m *Manager) RequestDelete(id string) bool {
	if m.deleting {
		return false
	}
	title, ok := m.Title(id)
	if !ok {
		return false
	}
	m.pending = &PendingDelete{ID: id, Title: title}
	return true
}

// CancelDelete drops the pending confirmation.
func (m *Manager) CancelDelete() {
	if !m.deleting {
		m.pending = nil
	}
}

// ConfirmDelete deletes the pending conversation. On success the list is
// refreshed and the session is told, in that order.
func (m *Manager) ConfirmDelete() async.Task {
	if m.pending == nil || m.deleting {
		return nil
	}
	m.deleting = true
	id := m.pending.ID

	return func(ctx context.Context) async.Result {
		return &deleteResult{m: m, id: id, err: m.store.DeleteConversation(ctx, id)}
	}
}

type deleteResult struct {
	m   *Manager
	id  string
	err error
}

func (r *deleteResult) Apply() async.Task {
	m := r.m
	m.deleting = false
	m.pending = nil
	if r.err != nil {
		m.log.Error("failed to delete conversation", "conversationID", r.id, "error", r.err)
		return nil
	}

	m.log.Info("conversation deleted", "conversationID", r.id)
	refresh := m.Refresh()
	m.hooks.OnConversationDeleted(r.id)
	return refresh
}

// Err returns the delete failure, if any.
func (r *deleteResult) Err() error {
	if r.err == nil {
		return nil
	}
	return pe.E(pe.Op("conversations.ConfirmDelete"), pe.GetKind(r.err), "couldn't delete conversation", r.err)
}

// FormatSummaryDate labels a summary's update time by calendar day in
// now's location: "Today", "Yesterday", or "Jan 2".
func FormatSummaryDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	loc := now.Location()
	t = t.In(loc)

	day := func(x time.Time) time.Time {
		y, mo, d := x.Date()
		return time.Date(y, mo, d, 0, 0, 0, 0, loc)
	}
	today := day(now)

	switch d := day(t); {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return t.Format("Jan 2")
	}
}
