// Package mockserver is an in-memory conversation service that speaks the
// same HTTP API as the real one. It backs `parley demo` and the api tests.
package mockserver

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/zhubert/parley/internal/logger"
	"github.com/zhubert/parley/internal/store"
)

// maxUpload bounds the multipart body of /image/analyze.
const maxUpload = 10 << 20

// Responder produces the bot's reply to a text message.
type Responder func(text string) string

// Server is the in-memory service. Create it with New.
type Server struct {
	mu    sync.Mutex
	convs map[string]*store.Conversation

	now       func() time.Time
	respond   Responder
	latency   time.Duration
	token     string
	jwtSecret []byte
	log       *slog.Logger

	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires requests to carry exactly this bearer token.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithJWTSecret requires requests to carry an HS256 JWT signed with secret.
func WithJWTSecret(secret []byte) Option {
	return func(s *Server) { s.jwtSecret = secret }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithResponder overrides how replies are produced.
func WithResponder(r Responder) Option {
	return func(s *Server) { s.respond = r }
}

// WithLatency delays every reply, so the client's waiting state is visible.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// New creates a Server with no conversations.
func New(opts ...Option) *Server {
	s := &Server{
		convs:   make(map[string]*store.Conversation),
		now:     time.Now,
		respond: CannedReply,
		log:     logger.WithComponent("mockserver"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler serving the API under /api.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog)

	api := r.Group("/api", s.authenticate)
	api.GET("/conversations", s.listConversations)
	api.POST("/conversations", s.createConversation)
	api.GET("/conversations/:id", s.getConversation)
	api.DELETE("/conversations/:id", s.deleteConversation)
	api.DELETE("/conversations/:id/messages", s.clearMessages)
	api.POST("/chat", s.chat)
	api.POST("/image/analyze", s.analyzeImage)
	return r
}

// requestLog writes one line per request to the parley log instead of stdout.
func (s *Server) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"requestID", c.GetHeader("X-Request-ID"),
		"elapsed", time.Since(start),
	)
}

// Add stores a conversation, replacing any with the same ID.
func (s *Server) Add(conv store.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = s.now()
	}
	c := conv
	c.Messages = append([]store.Message(nil), conv.Messages...)
	s.convs[c.ID] = &c
}

// Conversation returns a copy of a stored conversation.
func (s *Server) Conversation(id string) (store.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return store.Conversation{}, false
	}
	out := *c
	out.Messages = append([]store.Message(nil), c.Messages...)
	return out, true
}

func (s *Server) listConversations(c *gin.Context) {
	s.mu.Lock()
	summaries := make([]store.Summary, 0, len(s.convs))
	for _, conv := range s.convs {
		summaries = append(summaries, store.Summary{ID: conv.ID, Title: conv.Title, UpdatedAt: conv.UpdatedAt})
	}
	s.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

type createRequest struct {
	Title string `json:"title"`
}

func (s *Server) createConversation(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = store.DefaultTitle
	}

	conv := store.Conversation{ID: uuid.NewString(), Title: title, UpdatedAt: s.now()}
	stored := conv
	s.mu.Lock()
	s.convs[conv.ID] = &stored
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"conversation": conv})
}

func (s *Server) getConversation(c *gin.Context) {
	conv, ok := s.Conversation(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

func (s *Server) deleteConversation(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.convs[id]
	delete(s.convs, id)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}

func (s *Server) clearMessages(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	conv, ok := s.convs[id]
	if ok {
		conv.Messages = nil
		conv.UpdatedAt = s.now()
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Messages cleared"})
}

type chatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversationId" binding:"required"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !s.wait(c.Request.Context()) {
		return
	}

	reply := s.respond(req.Message)
	if !s.exchange(req.ConversationID, req.Message, reply) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (s *Server) analyzeImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)

	conversationID := c.PostForm("conversationId")
	prompt := c.PostForm("prompt")
	fh, err := c.FormFile("image")
	if err != nil || conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image and conversationId are required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable upload"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable upload"})
		return
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("%s is not an image", mt.String())})
		return
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not decode image"})
		return
	}
	if !s.wait(c.Request.Context()) {
		return
	}

	reply := fmt.Sprintf("That looks like a %dx%d %s image (%s). You asked: %q.",
		cfg.Width, cfg.Height, strings.TrimPrefix(mt.Extension(), "."), fh.Filename, prompt)
	if !s.exchange(conversationID, prompt, reply) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// wait applies the configured latency. It returns false if the client gave up.
func (s *Server) wait(ctx context.Context) bool {
	if s.latency <= 0 {
		return true
	}
	select {
	case <-time.After(s.latency):
		return true
	case <-ctx.Done():
		return false
	}
}

// exchange records a user message and its reply. It returns false when
// the conversation does not exist.
func (s *Server) exchange(conversationID, text, reply string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[conversationID]
	if !ok {
		return false
	}
	now := s.now()
	conv.Messages = append(conv.Messages,
		store.Message{Text: text, Sender: store.SenderUser, TimeStamp: now},
		store.Message{Text: reply, Sender: store.SenderBot, TimeStamp: now},
	)
	conv.UpdatedAt = now
	if conv.Title == store.DefaultTitle {
		conv.Title = titleFrom(text)
	}
	return true
}

// titleFrom names a conversation after its first message.
func titleFrom(text string) string {
	const maxTitle = 40
	title := strings.Join(strings.Fields(text), " ")
	if title == "" {
		return store.DefaultTitle
	}
	if r := []rune(title); len(r) > maxTitle {
		title = strings.TrimSpace(string(r[:maxTitle])) + "…"
	}
	return title
}
