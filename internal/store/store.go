// Package store defines the conversation data model and the Store
// interface the session and sidebar talk to. The production Store is
// api.Client; tests use in-memory fakes.
package store

import (
	"context"
	"encoding/base64"
	"time"
)

// DefaultTitle is the title given to conversations created by the client.
const DefaultTitle = "New Conversation"

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry. Messages are never edited once appended.
type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Image     string    `json:"image,omitempty"` // data URL preview, only on locally composed messages
	TimeStamp time.Time `json:"timeStamp,omitzero"`
}

// Summary is a sidebar entry.
type Summary struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Conversation is a full conversation as returned by the service.
type Conversation struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
	Messages  []Message `json:"messages,omitempty"`
}

// Image is an attachment selected for the next submission.
type Image struct {
	Name      string
	Data      []byte
	MediaType string // e.g. "image/png"
	Width     int
	Height    int
}

// DataURL renders the image as a data URL suitable for inline display.
func (img Image) DataURL() string {
	return "data:" + img.MediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Store is the remote conversation service.
type Store interface {
	ListConversations(ctx context.Context) ([]Summary, error)
	CreateConversation(ctx context.Context, title string) (Conversation, error)
	// GetConversation returns the conversation with its transcript. A
	// conversation with no messages has a nil Messages slice.
	GetConversation(ctx context.Context, id string) (Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	ClearMessages(ctx context.Context, id string) error
	// SendMessage appends text to the conversation and returns the bot's reply.
	SendMessage(ctx context.Context, conversationID, text string) (string, error)
	// AnalyzeImage sends an image with a prompt and returns the bot's reply.
	AnalyzeImage(ctx context.Context, conversationID, prompt string, img Image) (string, error)
}
