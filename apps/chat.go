package apps

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"macsim/assistant"
	"macsim/metrics"
	"macsim/model"
)

const (
	Greeting         = "Hello! I am your macOS intelligence assistant powered by Gemini 2.5 Flash. How can I help you today?"
	ReplyFailed      = "Sorry, I encountered an error connecting to the AI service. Please check your API key."
	ReplyUnavailable = "I couldn't generate a response."
)

// ChatOption configures a ChatSession.
type ChatOption func(*ChatSession)

// WithTimeout bounds each request; zero means no limit.
func WithTimeout(d time.Duration) ChatOption {
	return func(c *ChatSession) { c.timeout = d }
}

func WithChatLogger(l *zap.Logger) ChatOption {
	return func(c *ChatSession) {
		if l != nil {
			c.log = l
		}
	}
}

func WithChatClock(now func() time.Time) ChatOption {
	return func(c *ChatSession) { c.now = now }
}

// ChatSession is one assistant conversation. At most one request is in flight;
// Close cancels it.
type ChatSession struct {
	provider assistant.Provider
	timeout  time.Duration
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	messages []model.ChatMessage
	busy     bool
	cancel   context.CancelFunc
	closed   bool
}

func NewChatSession(provider assistant.Provider, opts ...ChatOption) *ChatSession {
	c := &ChatSession{
		provider: provider,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.messages = []model.ChatMessage{{Role: model.RoleModel, Text: Greeting, Timestamp: model.TimestampOf(c.now())}}
	return c
}

// Messages returns the conversation so far.
func (c *ChatSession) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *ChatSession) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Send appends text as a user message, waits for the reply and appends it.
// Provider failures become a user-visible reply, never an error; errors are
// returned only for rejected input and cancellation.
func (c *ChatSession) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return model.ChatMessage{}, assistant.ErrEmptyMessage
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return model.ChatMessage{}, context.Canceled
	}
	if c.busy {
		c.mu.Unlock()
		return model.ChatMessage{}, assistant.ErrBusy
	}
	history := make([]model.ChatMessage, len(c.messages))
	copy(history, c.messages)
	c.messages = append(c.messages, model.ChatMessage{Role: model.RoleUser, Text: text, Timestamp: model.TimestampOf(c.now())})
	c.busy = true

	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.mu.Unlock()

	reply, err := c.provider.Reply(ctx, history, text)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.cancel = nil

	if c.closed && err != nil {
		metrics.RecordAssistantRequest("canceled")
		return model.ChatMessage{}, context.Canceled
	}
	switch {
	case err != nil:
		metrics.RecordAssistantRequest("error")
		c.log.Warn("assistant request failed", zap.String("provider", c.provider.Name()), zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)), zap.Error(err))
		reply = ReplyFailed
	case reply == "":
		metrics.RecordAssistantRequest("empty")
		reply = ReplyUnavailable
	default:
		metrics.RecordAssistantRequest("ok")
	}
	msg := model.ChatMessage{Role: model.RoleModel, Text: reply, Timestamp: model.TimestampOf(c.now())}
	c.messages = append(c.messages, msg)
	return msg, nil
}

// Close cancels an in-flight request and rejects further sends.
func (c *ChatSession) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
}
