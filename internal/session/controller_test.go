package session

import (
	"context"
	"testing"
	"time"

	"github.com/zhubert/parley/internal/async"
	pe "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/store"
	"github.com/zhubert/parley/internal/store/storetest"
)

var testNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func newController(t *testing.T, fake *storetest.Fake, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(fake, opts...)
}

// exec runs a task off-loop without applying it.
func exec(t *testing.T, task async.Task) async.Result {
	t.Helper()
	if task == nil {
		t.Fatal("expected a task, got nil")
	}
	return task(context.Background())
}

// resolve runs a task and applies its result.
func resolve(t *testing.T, task async.Task) async.Result {
	t.Helper()
	res := exec(t, task)
	if next := res.Apply(); next != nil {
		t.Fatalf("unexpected follow-up task from %T", res)
	}
	return res
}

func errOf(res async.Result) error {
	if e, ok := res.(interface{ Err() error }); ok {
		return e.Err()
	}
	return nil
}

func seeded() *storetest.Fake {
	fake := storetest.New()
	fake.Seed("c1", "Older", testNow.Add(-2*time.Hour),
		store.Message{Text: "hello c1", Sender: store.SenderUser, TimeStamp: testNow.Add(-2 * time.Hour)})
	fake.Seed("c2", "Newer", testNow.Add(-time.Hour),
		store.Message{Text: "hello c2", Sender: store.SenderUser},
		store.Message{Text: "hi", Sender: store.SenderBot})
	return fake
}

// openConversation selects id and applies the load.
func openConversation(t *testing.T, c *Controller, id string) {
	t.Helper()
	resolve(t, c.SelectConversation(id))
	if c.ActiveConversationID() != id {
		t.Fatalf("active = %q, want %q", c.ActiveConversationID(), id)
	}
}

func TestInitialize_LoadsMostRecent(t *testing.T) {
	c := newController(t, seeded())

	task := c.Initialize()
	if !c.Loading() {
		t.Error("Loading() should be true while initializing")
	}
	resolve(t, task)

	if c.ActiveConversationID() != "c2" {
		t.Errorf("active = %q, want c2", c.ActiveConversationID())
	}
	if got := c.Transcript(); len(got) != 2 || got[0].Text != "hello c2" {
		t.Errorf("transcript = %+v", got)
	}
	if c.ActiveTitle() != "Newer" {
		t.Errorf("title = %q", c.ActiveTitle())
	}
	if c.Loading() {
		t.Error("Loading() should be false after initialize")
	}
}

func TestInitialize_PrefersLatestUpdatedAt(t *testing.T) {
	fake := storetest.New()
	fake.Seed("a", "A", testNow.Add(-time.Hour))
	fake.Seed("b", "B", testNow)
	c := newController(t, fake)

	resolve(t, c.Initialize())

	if c.ActiveConversationID() != "b" {
		t.Errorf("active = %q, want b", c.ActiveConversationID())
	}
}

func TestInitialize_CreatesWhenEmpty(t *testing.T) {
	fake := storetest.New()
	var touched []string
	c := newController(t, fake, WithActivityHook(func(id string) { touched = append(touched, id) }))

	resolve(t, c.Initialize())

	id := c.ActiveConversationID()
	if id == "" || !fake.Has(id) {
		t.Fatalf("expected a created conversation, got %q", id)
	}
	if c.ActiveTitle() != store.DefaultTitle {
		t.Errorf("title = %q, want %q", c.ActiveTitle(), store.DefaultTitle)
	}
	if len(c.Transcript()) != 0 {
		t.Errorf("transcript should be empty, got %+v", c.Transcript())
	}
	if len(touched) != 1 || touched[0] != id {
		t.Errorf("activity hook calls = %v", touched)
	}
}

func TestInitialize_FailureLeavesEmptyState(t *testing.T) {
	fake := seeded()
	fake.FailOn("ListConversations", true)
	c := newController(t, fake)

	res := resolve(t, c.Initialize())

	if c.ActiveConversationID() != "" || len(c.Transcript()) != 0 {
		t.Errorf("expected empty state, got active=%q transcript=%v", c.ActiveConversationID(), c.Transcript())
	}
	if errOf(res) == nil {
		t.Error("expected startup error to be reported")
	}
	if c.Initialize() != nil {
		t.Error("Initialize should only run once")
	}
}

func TestInitialize_DiscardedAfterUserSelects(t *testing.T) {
	c := newController(t, seeded())

	initRes := exec(t, c.Initialize())
	openConversation(t, c, "c1")
	initRes.Apply()

	if c.ActiveConversationID() != "c1" {
		t.Errorf("active = %q, want c1", c.ActiveConversationID())
	}
	if errOf(initRes) != nil {
		t.Error("stale result should not report an error")
	}
}

func TestSelectConversation(t *testing.T) {
	c := newController(t, seeded())
	openConversation(t, c, "c2")

	task := c.SelectConversation("c1")
	if c.ActiveConversationID() != "c1" {
		t.Error("active id should change immediately")
	}
	if len(c.Transcript()) != 0 || !c.Loading() {
		t.Error("old transcript should be dropped while loading")
	}
	resolve(t, task)

	if got := c.Transcript(); len(got) != 1 || got[0].Text != "hello c1" {
		t.Errorf("transcript = %+v", got)
	}
}

func TestSelectConversation_MissingMessagesIsEmpty(t *testing.T) {
	fake := storetest.New()
	fake.Seed("empty", "Empty", testNow)
	c := newController(t, fake)

	resolve(t, c.SelectConversation("empty"))

	if c.Transcript() != nil {
		t.Errorf("transcript = %+v, want empty", c.Transcript())
	}
}

func TestSelectConversation_OutOfOrderLoads(t *testing.T) {
	c := newController(t, seeded())

	first := exec(t, c.SelectConversation("c1"))
	second := exec(t, c.SelectConversation("c2"))
	second.Apply()
	first.Apply()

	if c.ActiveConversationID() != "c2" {
		t.Errorf("active = %q, want c2", c.ActiveConversationID())
	}
	if got := c.Transcript(); len(got) != 2 {
		t.Errorf("late load for c1 overwrote c2 transcript: %+v", got)
	}
}

func TestSelectConversation_Failure(t *testing.T) {
	fake := seeded()
	fake.FailOn("GetConversation", true)
	c := newController(t, fake)

	res := resolve(t, c.SelectConversation("c1"))

	if errOf(res) == nil {
		t.Error("expected load error")
	}
	if c.ActiveConversationID() != "c1" || len(c.Transcript()) != 0 || c.Loading() {
		t.Errorf("unexpected state after failed load: active=%q loading=%v", c.ActiveConversationID(), c.Loading())
	}
}

func TestCreateConversation(t *testing.T) {
	fake := seeded()
	c := newController(t, fake)
	openConversation(t, c, "c1")

	resolve(t, c.CreateConversation())

	id := c.ActiveConversationID()
	if id == "c1" || !fake.Has(id) {
		t.Fatalf("active = %q, want new conversation", id)
	}
	if len(c.Transcript()) != 0 {
		t.Errorf("new conversation should have empty transcript")
	}
}

func TestCreateConversation_DiscardedAfterSelect(t *testing.T) {
	c := newController(t, seeded())

	created := exec(t, c.CreateConversation())
	openConversation(t, c, "c1")
	created.Apply()

	if c.ActiveConversationID() != "c1" {
		t.Errorf("active = %q, want c1", c.ActiveConversationID())
	}
}

func TestSubmit_OptimisticAppendThenReply(t *testing.T) {
	fake := seeded()
	var touched []string
	c := newController(t, fake, WithActivityHook(func(id string) { touched = append(touched, id) }))
	openConversation(t, c, "c1")

	task, err := c.Submit("  how are you?  ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got := c.Transcript()
	last := got[len(got)-1]
	if last.Sender != store.SenderUser || last.Text != "how are you?" || !last.TimeStamp.Equal(testNow) {
		t.Errorf("optimistic message = %+v", last)
	}
	if !c.Sending() {
		t.Error("Sending() should be true while in flight")
	}

	res := resolve(t, task)

	got = c.Transcript()
	if len(got) != 3 {
		t.Fatalf("transcript len = %d, want 3", len(got))
	}
	if got[1].Sender != store.SenderUser || got[2].Sender != store.SenderBot || got[2].Text != "echo: how are you?" {
		t.Errorf("expected user then bot, got %+v", got[1:])
	}
	if c.Sending() {
		t.Error("Sending() should be false after reply")
	}
	if d, ok := res.(interface{ Delivered() bool }); !ok || !d.Delivered() {
		t.Error("result should report delivery")
	}
	if len(touched) != 1 || touched[0] != "c1" {
		t.Errorf("activity hook calls = %v", touched)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	c := newController(t, seeded())

	if _, err := c.Submit("hi"); !pe.Is(err, pe.KindInvalid) {
		t.Errorf("submit without conversation: err = %v", err)
	}
	openConversation(t, c, "c1")

	if _, err := c.Submit("   "); err == nil {
		t.Error("blank submit should be rejected")
	}
	if len(c.Transcript()) != 1 || c.Sending() {
		t.Error("rejected submit must not change state")
	}
}

func TestSubmit_SingleInFlight(t *testing.T) {
	fake := seeded()
	c := newController(t, fake)
	openConversation(t, c, "c1")

	task, err := c.Submit("first")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	before := len(c.Transcript())

	if _, err := c.Submit("second"); !pe.Is(err, pe.KindBusy) {
		t.Errorf("second submit err = %v, want busy", err)
	}
	if len(c.Transcript()) != before {
		t.Error("second submit must not append")
	}

	resolve(t, task)
	sends := 0
	for _, call := range fake.Calls() {
		if call == "SendMessage" {
			sends++
		}
	}
	if sends != 1 {
		t.Errorf("SendMessage called %d times, want 1", sends)
	}
	if _, err := c.Submit("third"); err != nil {
		t.Errorf("submit after reply should be accepted: %v", err)
	}
}

func TestSubmit_StaleReplyDiscarded(t *testing.T) {
	c := newController(t, seeded())
	openConversation(t, c, "c1")

	pending := exec(t, mustSubmit(t, c, "for c1"))
	openConversation(t, c, "c2")
	pending.Apply()

	got := c.Transcript()
	if len(got) != 2 || got[0].Text != "hello c2" || got[1].Text != "hi" {
		t.Errorf("c2 transcript changed by c1 reply: %+v", got)
	}
	if c.Sending() {
		t.Error("Sending() should reset even for a stale reply")
	}
	if d := pending.(interface{ Delivered() bool }); d.Delivered() {
		t.Error("stale reply should not report delivery")
	}
}

func TestSubmit_FailureAppendsApology(t *testing.T) {
	fake := seeded()
	fake.FailOn("SendMessage", true)
	c := newController(t, fake)
	openConversation(t, c, "c1")

	res := resolve(t, mustSubmit(t, c, "hello?"))

	got := c.Transcript()
	last := got[len(got)-1]
	if last.Sender != store.SenderBot || last.Text != FailureReply {
		t.Errorf("last message = %+v, want apology", last)
	}
	if got[len(got)-2].Text != "hello?" {
		t.Error("optimistic user message should be kept")
	}
	if c.Sending() {
		t.Error("Sending() should be false after failure")
	}
	if errOf(res) == nil {
		t.Error("failure should be reported")
	}
}

func TestSubmit_ImageOnly(t *testing.T) {
	fake := seeded()
	c := newController(t, fake)
	openConversation(t, c, "c1")

	img := store.Image{Name: "cat.png", MediaType: "image/png", Data: []byte("png-bytes")}
	resolve(t, c.SelectImage(img))
	if c.ImagePreview() != img.DataURL() {
		t.Fatalf("preview = %q", c.ImagePreview())
	}

	task := mustSubmit(t, c, "")
	got := c.Transcript()
	user := got[len(got)-1]
	if user.Text != ImageOnlyCaption || user.Image != img.DataURL() {
		t.Errorf("optimistic image message = %+v", user)
	}

	resolve(t, task)

	got = c.Transcript()
	if reply := got[len(got)-1].Text; reply != "Describe this image (image/png, 9 bytes)" {
		t.Errorf("reply = %q; image endpoint should get the default prompt", reply)
	}
	if _, ok := c.PendingImage(); ok || c.ImagePreview() != "" {
		t.Error("image should be cleared after a successful send")
	}
}

func TestSubmit_ImageKeptOnFailure(t *testing.T) {
	fake := seeded()
	fake.FailOn("AnalyzeImage", true)
	c := newController(t, fake)
	openConversation(t, c, "c1")

	resolve(t, c.SelectImage(store.Image{Name: "a.png", MediaType: "image/png", Data: []byte{1}}))
	resolve(t, mustSubmit(t, c, "what is this"))

	if _, ok := c.PendingImage(); !ok {
		t.Error("image should be kept when the send fails")
	}
}

func TestSubmit_NewImageSurvivesEarlierSend(t *testing.T) {
	c := newController(t, seeded())
	openConversation(t, c, "c1")

	resolve(t, c.SelectImage(store.Image{Name: "first.png", MediaType: "image/png", Data: []byte{1}}))
	pending := exec(t, mustSubmit(t, c, ""))
	resolve(t, c.SelectImage(store.Image{Name: "second.png", MediaType: "image/png", Data: []byte{2}}))
	pending.Apply()

	img, ok := c.PendingImage()
	if !ok || img.Name != "second.png" {
		t.Errorf("pending image = %+v, %v; want second.png", img, ok)
	}
}

func TestSelectImage_StalePreview(t *testing.T) {
	c := newController(t, seeded())

	first := exec(t, c.SelectImage(store.Image{Name: "a.png", MediaType: "image/png", Data: []byte("a")}))
	second := store.Image{Name: "b.png", MediaType: "image/png", Data: []byte("b")}
	resolve(t, c.SelectImage(second))
	first.Apply()

	if c.ImagePreview() != second.DataURL() {
		t.Errorf("preview = %q, want preview of b.png", c.ImagePreview())
	}

	late := exec(t, c.SelectImage(second))
	c.ClearImageSelection()
	late.Apply()
	if c.ImagePreview() != "" {
		t.Error("preview should not reappear after clearing the selection")
	}
}

func TestClear_Flow(t *testing.T) {
	fake := seeded()
	c := newController(t, fake)
	openConversation(t, c, "c2")

	if !c.RequestClear() || !c.ClearConfirmationOpen() {
		t.Fatal("RequestClear should open the prompt")
	}
	c.CancelClear()
	if c.ClearConfirmationOpen() || len(c.Transcript()) != 2 {
		t.Error("cancel should close the prompt and keep the transcript")
	}

	c.RequestClear()
	task := c.ConfirmClear()
	if len(c.Transcript()) != 2 {
		t.Error("transcript must not change before the service confirms")
	}
	if c.ConfirmClear() != nil {
		t.Error("a second confirm while clearing should be ignored")
	}
	resolve(t, task)

	if len(c.Transcript()) != 0 || c.ClearConfirmationOpen() {
		t.Error("successful clear should empty the transcript and close the prompt")
	}
	if len(fake.Messages("c2")) != 0 {
		t.Error("service transcript should be cleared")
	}
}

func TestClear_FailureIsAllOrNothing(t *testing.T) {
	fake := seeded()
	fake.FailOn("ClearMessages", true)
	c := newController(t, fake)
	openConversation(t, c, "c2")

	c.RequestClear()
	res := resolve(t, c.ConfirmClear())

	if len(c.Transcript()) != 2 {
		t.Error("transcript should be unchanged after a failed clear")
	}
	if !c.ClearConfirmationOpen() {
		t.Error("prompt should stay open after a failed clear")
	}
	if errOf(res) == nil {
		t.Error("failure should be reported")
	}
}

func TestClear_NoOpWithoutConversationOrMessages(t *testing.T) {
	fake := seeded()
	fake.Seed("empty", "Empty", testNow)
	c := newController(t, fake)

	if c.RequestClear() {
		t.Error("RequestClear without a conversation should do nothing")
	}
	if c.ConfirmClear() != nil {
		t.Error("ConfirmClear without a prompt should do nothing")
	}

	openConversation(t, c, "empty")
	if c.RequestClear() {
		t.Error("RequestClear on an empty transcript should do nothing")
	}
}

func TestOnConversationDeleted(t *testing.T) {
	c := newController(t, seeded())
	openConversation(t, c, "c1")

	c.OnConversationDeleted("c2")
	if c.ActiveConversationID() != "c1" {
		t.Error("deleting another conversation must not reset the session")
	}

	pendingLoad := exec(t, c.SelectConversation("c1"))
	c.OnConversationDeleted("c1")
	if c.ActiveConversationID() != "" || len(c.Transcript()) != 0 {
		t.Error("deleting the active conversation should reset the session")
	}

	pendingLoad.Apply()
	if c.ActiveConversationID() != "" || len(c.Transcript()) != 0 {
		t.Error("a load started before the delete must not resurrect it")
	}

	if _, err := c.Submit("anyone?"); err == nil {
		t.Error("submit should be rejected with no active conversation")
	}
}

func mustSubmit(t *testing.T, c *Controller, text string) async.Task {
	t.Helper()
	task, err := c.Submit(text)
	if err != nil {
		t.Fatalf("Submit(%q): %v", text, err)
	}
	return task
}
