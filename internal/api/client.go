// Package api talks to the conversation service over HTTP. Client
// implements store.Store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	pe "github.com/zhubert/parley/internal/errors"
	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
)

// defaultHTTPTimeout is the transport-level ceiling. Callers normally
// bound each request tighter through its context.
const defaultHTTPTimeout = 2 * time.Minute

// maxErrorBody caps how much of a failed response is read for logging.
const maxErrorBody = 4 << 10

// Client is an HTTP store.Store.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the service rooted at baseURL (e.g.
// "http://localhost:8080/api") that authenticates with token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, pe.E(pe.Op("api.New"), pe.KindConfig, fmt.Sprintf("invalid base URL %q", baseURL))
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        logger.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// Wire shapes. Only the fields the client reads are declared.

type listResponse struct {
	Conversations []store.Summary `json:"conversations"`
}

type conversationResponse struct {
	Conversation store.Conversation `json:"conversation"`
}

type createRequest struct {
	Title string `json:"title"`
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

// ListConversations returns summaries, newest first.
func (c *Client) ListConversations(ctx context.Context) ([]store.Summary, error) {
	const op = pe.Op("api.ListConversations")
	var resp listResponse
	if err := c.doJSON(ctx, op, http.MethodGet, "/conversations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// CreateConversation creates a conversation with title.
func (c *Client) CreateConversation(ctx context.Context, title string) (store.Conversation, error) {
	const op = pe.Op("api.CreateConversation")
	var resp conversationResponse
	if err := c.doJSON(ctx, op, http.MethodPost, "/conversations", createRequest{Title: title}, &resp); err != nil {
		return store.Conversation{}, err
	}
	if resp.Conversation.ID == "" {
		return store.Conversation{}, pe.ResponseInvalid(op, "/conversations", errors.New("missing conversation id"))
	}
	conv := resp.Conversation
	if conv.Title == "" {
		conv.Title = title
	}
	return conv, nil
}

// GetConversation returns a conversation with its messages.
func (c *Client) GetConversation(ctx context.Context, id string) (store.Conversation, error) {
	const op = pe.Op("api.GetConversation")
	var resp conversationResponse
	if err := c.doJSON(ctx, op, http.MethodGet, "/conversations/"+url.PathEscape(id), nil, &resp); err != nil {
		return store.Conversation{}, err
	}
	conv := resp.Conversation
	if conv.ID == "" {
		conv.ID = id
	}
	return conv, nil
}

// DeleteConversation deletes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.doJSON(ctx, pe.Op("api.DeleteConversation"), http.MethodDelete, "/conversations/"+url.PathEscape(id), nil, nil)
}

// ClearMessages deletes every message of a conversation.
func (c *Client) ClearMessages(ctx context.Context, id string) error {
	return c.doJSON(ctx, pe.Op("api.ClearMessages"), http.MethodDelete, "/conversations/"+url.PathEscape(id)+"/messages", nil, nil)
}

// SendMessage posts a text message and returns the reply.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) (string, error) {
	const op = pe.Op("api.SendMessage")
	var resp replyResponse
	if err := c.doJSON(ctx, op, http.MethodPost, "/chat", chatRequest{Message: text, ConversationID: conversationID}, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// AnalyzeImage uploads an image with a prompt and returns the reply.
func (c *Client) AnalyzeImage(ctx context.Context, conversationID, prompt string, img store.Image) (string, error) {
	const op = pe.Op("api.AnalyzeImage")

	body, contentType, err := imageForm(conversationID, prompt, img)
	if err != nil {
		return "", pe.E(op, pe.KindIO, "failed to build upload", err)
	}

	var resp replyResponse
	if err := c.do(ctx, op, http.MethodPost, "/image/analyze", contentType, body, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// imageForm encodes the multipart body for /image/analyze.
func imageForm(conversationID, prompt string, img store.Image) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := img.Name
	if name == "" {
		name = "image"
	}
	mediaType := img.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	h.Set("Content-Type", mediaType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("prompt", prompt); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("conversationId", conversationID); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// doJSON sends in (if non-nil) as a JSON body and decodes the response into out (if non-nil).
func (c *Client) doJSON(ctx context.Context, op pe.Op, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return pe.E(op, pe.KindInvalid, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, contentType, body, out)
}

func (c *Client) do(ctx context.Context, op pe.Op, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pe.E(op, pe.KindInvalid, "failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log := c.log.With("method", method, "path", path, "requestID", requestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return pe.E(op, pe.KindTimeout, fmt.Sprintf("%s %s timed out", method, path), err)
		}
		return pe.E(op, pe.KindNetwork, fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	log.Debug("response", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("unexpected status", "status", resp.StatusCode, "body", strings.TrimSpace(string(snippet)))
		return pe.RequestFailed(op, method, path, resp.StatusCode)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pe.ResponseInvalid(op, path, err)
	}
	return nil
}

var _ store.Store = (*Client)(nil)
