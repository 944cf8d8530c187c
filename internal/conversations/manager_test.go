package conversations

import (
	"context"
	"testing"
	"time"

	"github.com/zhubert/parley/internal/async"
	"github.com/zhubert/parley/internal/store/storetest"
)

var base = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// recordingHooks stands in for the session controller.
type recordingHooks struct {
	events  []string
	manager *Manager
	// loadingAtNotify captures whether a refresh was already issued when
	// the deletion notice arrived.
	loadingAtNotify bool
}

func (h *recordingHooks) SelectConversation(id string) async.Task {
	h.events = append(h.events, "select:"+id)
	return nil
}

func (h *recordingHooks) CreateConversation() async.Task {
	h.events = append(h.events, "create")
	return nil
}

func (h *recordingHooks) OnConversationDeleted(id string) {
	h.events = append(h.events, "deleted:"+id)
	if h.manager != nil {
		h.loadingAtNotify = h.manager.Loading()
	}
}

func setup(t *testing.T) (*Manager, *storetest.Fake, *recordingHooks) {
	t.Helper()
	fake := storetest.New()
	fake.Seed("a", "Alpha", base.Add(-time.Hour))
	fake.Seed("b", "Beta", base)
	hooks := &recordingHooks{}
	m := New(fake, hooks)
	hooks.manager = m
	return m, fake, hooks
}

func run(task async.Task) async.Result {
	return task(context.Background())
}

func drain(t *testing.T, task async.Task) {
	t.Helper()
	async.Run(context.Background(), task)
}

func TestRefresh(t *testing.T) {
	m, _, _ := setup(t)

	if m.Loaded() {
		t.Error("Loaded() should be false before the first refresh")
	}
	task := m.Refresh()
	if !m.Loading() {
		t.Error("Loading() should be true while a refresh is in flight")
	}
	drain(t, task)

	got := m.Summaries()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("summaries = %+v, want newest first", got)
	}
	if m.Loading() || !m.Loaded() {
		t.Error("refresh should finish loaded")
	}
}

func TestRefresh_OutOfOrderResponses(t *testing.T) {
	m, fake, _ := setup(t)

	older := run(m.Refresh())
	fake.Seed("c", "Gamma", base.Add(time.Hour))
	newer := run(m.Refresh())

	newer.Apply()
	if !m.Loading() {
		t.Error("Loading() should stay true while the older refresh is outstanding")
	}
	older.Apply()

	if got := m.Summaries(); len(got) != 3 || got[0].ID != "c" {
		t.Errorf("older response overwrote newer list: %+v", got)
	}
	if m.Loading() {
		t.Error("Loading() should be false once both responses are in")
	}
}

func TestRefresh_FailureKeepsList(t *testing.T) {
	m, fake, _ := setup(t)
	drain(t, m.Refresh())

	fake.FailOn("ListConversations", true)
	res := run(m.Refresh())
	res.Apply()

	if len(m.Summaries()) != 2 {
		t.Error("a failed refresh should keep the previous list")
	}
	if res.(interface{ Err() error }).Err() == nil {
		t.Error("failure should be reported")
	}
}

func TestSelectAndNewForwardToHooks(t *testing.T) {
	m, _, hooks := setup(t)

	m.Select("a")
	m.NewConversation()

	if len(hooks.events) != 2 || hooks.events[0] != "select:a" || hooks.events[1] != "create" {
		t.Errorf("hook events = %v", hooks.events)
	}
}

func TestDelete_ConfirmRefreshesThenNotifies(t *testing.T) {
	m, fake, hooks := setup(t)
	drain(t, m.Refresh())

	if !m.RequestDelete("a") {
		t.Fatal("RequestDelete should accept a listed conversation")
	}
	pending, ok := m.PendingConfirmation()
	if !ok || pending.ID != "a" || pending.Title != "Alpha" {
		t.Errorf("pending = %+v, %v", pending, ok)
	}

	task := m.ConfirmDelete()
	if !m.Deleting() {
		t.Error("Deleting() should be true while in flight")
	}
	refresh := run(task).Apply()
	if refresh == nil {
		t.Fatal("a successful delete should return a refresh task")
	}
	if len(hooks.events) != 1 || hooks.events[0] != "deleted:a" {
		t.Errorf("hook events = %v", hooks.events)
	}
	if !hooks.loadingAtNotify {
		t.Error("the refresh should be issued before the session is notified")
	}
	drain(t, refresh)

	if fake.Has("a") {
		t.Error("conversation should be deleted on the service")
	}
	if got := m.Summaries(); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("summaries after delete = %+v", got)
	}
	if _, ok := m.PendingConfirmation(); ok {
		t.Error("pending confirmation should be cleared")
	}
}

func TestDelete_Cancel(t *testing.T) {
	m, fake, hooks := setup(t)
	drain(t, m.Refresh())

	m.RequestDelete("b")
	m.CancelDelete()

	if _, ok := m.PendingConfirmation(); ok {
		t.Error("cancel should drop the pending confirmation")
	}
	if m.ConfirmDelete() != nil {
		t.Error("confirm without a pending delete should do nothing")
	}
	if !fake.Has("b") || len(hooks.events) != 0 {
		t.Error("cancelled delete must not touch the service or the session")
	}
}

func TestDelete_Failure(t *testing.T) {
	m, fake, hooks := setup(t)
	drain(t, m.Refresh())
	fake.FailOn("DeleteConversation", true)

	m.RequestDelete("a")
	res := run(m.ConfirmDelete())
	if next := res.Apply(); next != nil {
		t.Error("a failed delete should not refresh")
	}

	if len(hooks.events) != 0 {
		t.Errorf("session should not be notified, got %v", hooks.events)
	}
	if len(m.Summaries()) != 2 {
		t.Error("list should be left as it was")
	}
	if res.(interface{ Err() error }).Err() == nil {
		t.Error("failure should be reported")
	}
}

func TestRequestDelete_Unknown(t *testing.T) {
	m, _, _ := setup(t)
	drain(t, m.Refresh())

	if m.RequestDelete("missing") {
		t.Error("RequestDelete should reject unknown ids")
	}
}

func TestRequestDelete_BlockedWhileDeleting(t *testing.T) {
	m, _, _ := setup(t)
	drain(t, m.Refresh())

	m.RequestDelete("a")
	task := m.ConfirmDelete()
	if m.RequestDelete("b") {
		t.Error("a second delete should wait for the first")
	}
	m.CancelDelete()
	if p, ok := m.PendingConfirmation(); !ok || p.ID != "a" {
		t.Error("cancel must not drop a delete already in flight")
	}
	drain(t, task)
}

func TestFormatSummaryDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"earlier today", time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC), "Today"},
		{"late yesterday", time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC), "Yesterday"},
		{"early yesterday", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "Yesterday"},
		{"two days ago", time.Date(2024, 3, 8, 23, 59, 0, 0, time.UTC), "Mar 8"},
		{"month boundary", time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), "Feb 29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSummaryDate(tt.t, now); got != tt.want {
				t.Errorf("FormatSummaryDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatSummaryDate_YearBoundary(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if got := FormatSummaryDate(time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC), now); got != "Yesterday" {
		t.Errorf("FormatSummaryDate() = %q, want Yesterday", got)
	}
}
