// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zhubert/parley/internal/store"
)

// ErrInjected is returned by operations listed in Fake.Fail.
var ErrInjected = errors.New("injected failure")

// Fake is a goroutine-safe in-memory Store. Exported fields may be set
// before use; use the methods once tasks are running.
type Fake struct {
	mu    sync.Mutex
	convs map[string]*store.Conversation
	next  int
	now   func() time.Time

	fail  map[string]bool
	calls []string

	// Reply computes the bot's answer to a text message.
	Reply func(text string) string
}

// New returns an empty Fake with a fixed clock.
func New() *Fake {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	return &Fake{
		convs: make(map[string]*store.Conversation),
		fail:  make(map[string]bool),
		now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		},
		Reply: func(text string) string { return "echo: " + text },
	}
}

// Seed adds a conversation with the given id, title, update time and messages.
func (f *Fake) Seed(id, title string, updatedAt time.Time, msgs ...store.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.convs[id] = &store.Conversation{ID: id, Title: title, UpdatedAt: updatedAt, Messages: msgs}
}

// FailOn makes the named operation (e.g. "SendMessage") return ErrInjected.
func (f *Fake) FailOn(op string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = fail
}

// Calls returns the operations invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Messages returns the stored transcript of a conversation.
func (f *Fake) Messages(id string) []store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.convs[id]; ok {
		return append([]store.Message(nil), c.Messages...)
	}
	return nil
}

// Has reports whether a conversation exists.
func (f *Fake) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.convs[id]
	return ok
}

func (f *Fake) enter(op string) error {
	f.calls = append(f.calls, op)
	if f.fail[op] {
		return fmt.Errorf("%s: %w", op, ErrInjected)
	}
	return nil
}

func (f *Fake) get(id string) (*store.Conversation, error) {
	c, ok := f.convs[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	return c, nil
}

func (f *Fake) ListConversations(ctx context.Context) ([]store.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListConversations"); err != nil {
		return nil, err
	}

	out := make([]store.Summary, 0, len(f.convs))
	for _, c := range f.convs {
		out = append(out, store.Summary{ID: c.ID, Title: c.Title, UpdatedAt: c.UpdatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (f *Fake) CreateConversation(ctx context.Context, title string) (store.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateConversation"); err != nil {
		return store.Conversation{}, err
	}

	f.next++
	c := &store.Conversation{ID: fmt.Sprintf("new-%d", f.next), Title: title, UpdatedAt: f.now()}
	f.convs[c.ID] = c
	return store.Conversation{ID: c.ID, Title: c.Title, UpdatedAt: c.UpdatedAt}, nil
}

func (f *Fake) GetConversation(ctx context.Context, id string) (store.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetConversation"); err != nil {
		return store.Conversation{}, err
	}
	c, err := f.get(id)
	if err != nil {
		return store.Conversation{}, err
	}
	out := *c
	out.Messages = append([]store.Message(nil), c.Messages...)
	return out, nil
}

func (f *Fake) DeleteConversation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteConversation"); err != nil {
		return err
	}
	if _, err := f.get(id); err != nil {
		return err
	}
	delete(f.convs, id)
	return nil
}

func (f *Fake) ClearMessages(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ClearMessages"); err != nil {
		return err
	}
	c, err := f.get(id)
	if err != nil {
		return err
	}
	c.Messages = nil
	return nil
}

func (f *Fake) SendMessage(ctx context.Context, conversationID, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SendMessage"); err != nil {
		return "", err
	}
	c, err := f.get(conversationID)
	if err != nil {
		return "", err
	}
	reply := f.Reply(text)
	now := f.now()
	c.Messages = append(c.Messages,
		store.Message{Text: text, Sender: store.SenderUser, TimeStamp: now},
		store.Message{Text: reply, Sender: store.SenderBot, TimeStamp: now},
	)
	c.UpdatedAt = now
	return reply, nil
}

func (f *Fake) AnalyzeImage(ctx context.Context, conversationID, prompt string, img store.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AnalyzeImage"); err != nil {
		return "", err
	}
	c, err := f.get(conversationID)
	if err != nil {
		return "", err
	}
	reply := fmt.Sprintf("%s (%s, %d bytes)", prompt, img.MediaType, len(img.Data))
	now := f.now()
	c.Messages = append(c.Messages,
		store.Message{Text: prompt, Sender: store.SenderUser, TimeStamp: now},
		store.Message{Text: reply, Sender: store.SenderBot, TimeStamp: now},
	)
	c.UpdatedAt = now
	return reply, nil
}

var _ store.Store = (*Fake)(nil)
