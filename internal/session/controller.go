package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/zhubert/parley/internal/async"
	pe "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
)

const (
	// ImageOnlyCaption is shown as the user's message when an image is sent without text.
	ImageOnlyCaption = "Analyze this image"
	// DefaultImagePrompt is sent to the image endpoint when the user typed nothing.
	DefaultImagePrompt = "Describe this image"
	// FailureReply is appended as a bot message when a submission fails.
	FailureReply = "Sorry, something went wrong. Please try again."
)

// Controller is the session state machine. It is not safe for concurrent
// use; every method and every Result.Apply must run on the same goroutine.
type Controller struct {
	store      store.Store
	log        *slog.Logger
	now        func() time.Time
	onActivity func(conversationID string)

	activeID   string
	title      string
	transcript []store.Message
	loading    bool

	image    *store.Image
	preview  string
	imageGen uint64

	sending   bool
	clearOpen bool
	clearing  bool

	initialized bool
	// nav increases on every change of active conversation. Loads and
	// creates started under an older value are discarded.
	nav uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the clock used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithActivityHook registers fn to be called with a conversation's ID after
// it is created or receives a reply, so its listing can be refreshed.
func WithActivityHook(fn func(conversationID string)) Option {
	return func(c *Controller) { c.onActivity = fn }
}

// New creates a Controller backed by s.
func New(s store.Store, opts ...Option) *Controller {
	c := &Controller{
		store: s,
		log:   logger.WithComponent("session"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ActiveConversationID returns the open conversation, or "" when none is.
func (c *Controller) ActiveConversationID() string { return c.activeID }

// ActiveTitle returns the open conversation's title when known.
func (c *Controller) ActiveTitle() string { return c.title }

// Transcript returns a copy of the active conversation's messages.
func (c *Controller) Transcript() []store.Message {
	return append([]store.Message(nil), c.transcript...)
}

// Loading reports whether the active transcript is still being fetched.
func (c *Controller) Loading() bool { return c.loading }

// Sending reports whether a submission is in flight.
func (c *Controller) Sending() bool { return c.sending }

// ClearConfirmationOpen reports whether the clear prompt is showing.
func (c *Controller) ClearConfirmationOpen() bool { return c.clearOpen }

// Clearing reports whether a confirmed clear is in flight.
func (c *Controller) Clearing() bool { return c.clearing }

// PendingImage returns the image selected for the next submission.
func (c *Controller) PendingImage() (store.Image, bool) {
	if c.image == nil {
		return store.Image{}, false
	}
	return *c.image, true
}

// ImagePreview returns the data URL of the pending image once it is ready.
func (c *Controller) ImagePreview() string { return c.preview }

func (c *Controller) conversationLog(id string) *slog.Logger {
	return c.log.With("conversationID", id)
}

func (c *Controller) activity(id string) {
	if c.onActivity != nil {
		c.onActivity(id)
	}
}

// Initialize opens the most recently updated conversation, or creates one
// when none exist. Subsequent calls return nil.
func (c *Controller) Initialize() async.Task {
	if c.initialized {
		return nil
	}
	c.initialized = true
	c.loading = true
	gen := c.nav

	return func(ctx context.Context) async.Result {
		r := &initResult{c: c, gen: gen}
		summaries, err := c.store.ListConversations(ctx)
		if err != nil {
			r.err = err
			return r
		}
		if len(summaries) == 0 {
			r.created = true
			r.conv, r.err = c.store.CreateConversation(ctx, store.DefaultTitle)
			return r
		}
		r.conv, r.err = c.store.GetConversation(ctx, mostRecent(summaries).ID)
		return r
	}
}

// mostRecent picks the summary with the latest UpdatedAt. The service
// returns summaries newest first, so ties keep the earlier entry.
func mostRecent(summaries []store.Summary) store.Summary {
	best := summaries[0]
	for _, s := range summaries[1:] {
		if s.UpdatedAt.After(best.UpdatedAt) {
			best = s
		}
	}
	return best
}

type initResult struct {
	c       *Controller
	gen     uint64
	conv    store.Conversation
	created bool
	err     error
	stale   bool
}

func (r *initResult) Apply() async.Task {
	c := r.c
	if r.gen != c.nav {
		r.stale = true
		c.log.Debug("discarding startup result after navigation", "created", r.created, "conversationID", r.conv.ID)
		return nil
	}
	c.loading = false
	if r.err != nil {
		c.log.Error("startup failed", "error", r.err)
		c.activeID, c.title, c.transcript = "", "", nil
		return nil
	}

	c.nav++
	c.activeID = r.conv.ID
	c.title = r.conv.Title
	c.transcript = append([]store.Message(nil), r.conv.Messages...)
	c.conversationLog(r.conv.ID).Info("conversation opened at startup", "created", r.created, "messages", len(c.transcript))
	if r.created {
		c.activity(r.conv.ID)
	}
	return nil
}

// Err returns the startup failure, if any.
func (r *initResult) Err() error {
	if r.stale || r.err == nil {
		return nil
	}
	return pe.E(pe.Op("session.Initialize"), pe.GetKind(r.err), "couldn't load conversations", r.err)
}

// SelectConversation makes id the active conversation and fetches its
// transcript. The old transcript is dropped immediately.
func (c *Controller) SelectConversation(id string) async.Task {
	c.nav++
	gen := c.nav
	c.activeID = id
	c.title = ""
	c.transcript = nil
	c.loading = true
	c.clearOpen = false

	return func(ctx context.Context) async.Result {
		conv, err := c.store.GetConversation(ctx, id)
		return &loadResult{c: c, gen: gen, id: id, conv: conv, err: err}
	}
}

type loadResult struct {
	c     *Controller
	gen   uint64
	id    string
	conv  store.Conversation
	err   error
	stale bool
}

func (r *loadResult) Apply() async.Task {
	c := r.c
	if r.gen != c.nav || r.id != c.activeID {
		r.stale = true
		c.conversationLog(r.id).Debug("discarding stale transcript load")
		return nil
	}
	c.loading = false
	if r.err != nil {
		c.conversationLog(r.id).Error("failed to load conversation", "error", r.err)
		c.transcript = nil
		return nil
	}
	c.title = r.conv.Title
	c.transcript = append([]store.Message(nil), r.conv.Messages...)
	return nil
}

// Err returns the load failure, if any.
func (r *loadResult) Err() error {
	if r.stale || r.err == nil {
		return nil
	}
	return pe.E(pe.Op("session.SelectConversation"), pe.GetKind(r.err), "couldn't load conversation", r.err)
}

// CreateConversation creates a conversation with the default title and
// opens it once the service confirms.
func (c *Controller) CreateConversation() async.Task {
	gen := c.nav
	return func(ctx context.Context) async.Result {
		conv, err := c.store.CreateConversation(ctx, store.DefaultTitle)
		return &createResult{c: c, gen: gen, conv: conv, err: err}
	}
}

type createResult struct {
	c     *Controller
	gen   uint64
	conv  store.Conversation
	err   error
	stale bool
}

func (r *createResult) Apply() async.Task {
	c := r.c
	if r.err != nil {
		c.log.Error("failed to create conversation", "error", r.err)
		return nil
	}
	if r.gen != c.nav {
		r.stale = true
		c.conversationLog(r.conv.ID).Info("created conversation not opened; user navigated elsewhere")
		c.activity(r.conv.ID)
		return nil
	}

	c.nav++
	c.activeID = r.conv.ID
	c.title = r.conv.Title
	c.transcript = nil
	c.loading = false
	c.clearOpen = false
	c.conversationLog(r.conv.ID).Info("conversation created")
	c.activity(r.conv.ID)
	return nil
}

// Err returns the create failure, if any.
func (r *createResult) Err() error {
	if r.err == nil {
		return nil
	}
	return pe.E(pe.Op("session.CreateConversation"), pe.GetKind(r.err), "couldn't create conversation", r.err)
}

// Submit sends text, together with the pending image if one is selected,
// to the active conversation. It returns an error without side effects
// when there is nothing to send, a submission is already in flight, or no
// conversation is open.
func (c *Controller) Submit(text string) (async.Task, error) {
	const op = pe.Op("session.Submit")

	text = strings.TrimSpace(text)
	switch {
	case c.sending:
		return nil, pe.SubmissionInFlight(op)
	case text == "" && c.image == nil:
		return nil, pe.E(op, pe.KindInvalid, "nothing to send")
	case c.activeID == "":
		return nil, pe.NoActiveConversation(op)
	}

	convID := c.activeID
	img := c.image
	imageGen := c.imageGen

	msg := store.Message{Text: text, Sender: store.SenderUser, TimeStamp: c.now()}
	if img != nil {
		msg.Image = c.preview
		if msg.Image == "" {
			msg.Image = img.DataURL()
		}
		if text == "" {
			msg.Text = ImageOnlyCaption
		}
	}
	c.transcript = append(c.transcript, msg)
	c.sending = true

	return func(ctx context.Context) async.Result {
		r := &submitResult{c: c, conversationID: convID, imageGen: imageGen, withImage: img != nil}
		if img != nil {
			prompt := text
			if prompt == "" {
				prompt = DefaultImagePrompt
			}
			r.reply, r.err = c.store.AnalyzeImage(ctx, convID, prompt, *img)
		} else {
			r.reply, r.err = c.store.SendMessage(ctx, convID, text)
		}
		return r
	}, nil
}

type submitResult struct {
	c              *Controller
	conversationID string
	imageGen       uint64
	withImage      bool
	reply          string
	err            error
	stale          bool
}

func (r *submitResult) Apply() async.Task {
	c := r.c
	c.sending = false
	log := c.conversationLog(r.conversationID)

	// The image went out with this submission; drop it unless the user
	// has picked another one since.
	if r.err == nil && r.withImage && c.imageGen == r.imageGen {
		c.ClearImageSelection()
	}
	if r.err == nil {
		c.activity(r.conversationID)
	}

	if r.conversationID != c.activeID {
		r.stale = true
		log.Info("discarding reply for inactive conversation", "failed", r.err != nil)
		return nil
	}

	if r.err != nil {
		log.Error("submission failed", "image", r.withImage, "error", r.err)
		c.transcript = append(c.transcript, store.Message{Text: FailureReply, Sender: store.SenderBot, TimeStamp: c.now()})
		return nil
	}

	log.Debug("reply received", "image", r.withImage, "length", len(r.reply))
	c.transcript = append(c.transcript, store.Message{Text: r.reply, Sender: store.SenderBot, TimeStamp: c.now()})
	return nil
}

// Delivered reports whether the reply landed in the visible transcript.
// The composer text is cleared only then.
func (r *submitResult) Delivered() bool {
	return r.err == nil && !r.stale
}

// Reply returns the bot's reply text.
func (r *submitResult) Reply() string { return r.reply }

// Err returns the submission failure, if any.
func (r *submitResult) Err() error {
	if r.stale || r.err == nil {
		return nil
	}
	return pe.E(pe.Op("session.Submit"), pe.GetKind(r.err), "message failed", r.err)
}

// SelectImage stores img as the pending image and returns a Task that
// renders its preview.
func (c *Controller) SelectImage(img store.Image) async.Task {
	c.imageGen++
	gen := c.imageGen
	c.image = &img
	c.preview = ""

	return func(ctx context.Context) async.Result {
		return &previewResult{c: c, gen: gen, url: img.DataURL()}
	}
}

type previewResult struct {
	c   *Controller
	gen uint64
	url string
}

func (r *previewResult) Apply() async.Task {
	if r.gen == r.c.imageGen && r.c.image != nil {
		r.c.preview = r.url
	}
	return nil
}

// ClearImageSelection discards the pending image and its preview.
func (c *Controller) ClearImageSelection() {
	c.imageGen++
	c.image = nil
	c.preview = ""
}

// RequestClear opens the clear prompt. It does nothing and returns false
// when no conversation is open or its transcript is empty.
func (c *Controller) RequestClear() bool {
	if c.activeID == "" || len(c.transcript) == 0 {
		return false
	}
	c.clearOpen = true
	return true
}

// CancelClear closes the clear prompt.
func (c *Controller) CancelClear() {
	c.clearOpen = false
}

// ConfirmClear deletes every message of the active conversation. The
// transcript is emptied only after the service confirms.
func (c *Controller) ConfirmClear() async.Task {
	if !c.clearOpen || c.clearing || c.activeID == "" {
		return nil
	}
	c.clearing = true
	id := c.activeID

	return func(ctx context.Context) async.Result {
		return &clearResult{c: c, id: id, err: c.store.ClearMessages(ctx, id)}
	}
}

type clearResult struct {
	c   *Controller
	id  string
	err error
}

func (r *clearResult) Apply() async.Task {
	c := r.c
	c.clearing = false
	if r.err != nil {
		c.conversationLog(r.id).Error("failed to clear conversation", "error", r.err)
		return nil
	}
	c.clearOpen = false
	if r.id == c.activeID {
		c.transcript = nil
	}
	c.conversationLog(r.id).Info("conversation cleared")
	return nil
}

// Err returns the clear failure, if any.
func (r *clearResult) Err() error {
	if r.err == nil {
		return nil
	}
	return pe.E(pe.Op("session.ConfirmClear"), pe.GetKind(r.err), "couldn't clear chat", r.err)
}

// OnConversationDeleted resets the session when id was the active conversation.
func (c *Controller) OnConversationDeleted(id string) {
	if id == "" || id != c.activeID {
		return
	}
	c.nav++
	c.activeID = ""
	c.title = ""
	c.transcript = nil
	c.loading = false
	c.clearOpen = false
	c.conversationLog(id).Info("active conversation deleted")
}
