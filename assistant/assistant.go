// Package assistant talks to the language model behind the chat app.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"

	"macsim/config"
	"macsim/model"
)

const maxTokens = 1024

var (
	ErrNoProvider   = errors.New("no assistant provider configured")
	ErrBusy         = errors.New("a request is already in flight")
	ErrEmptyMessage = errors.New("message is empty")
)

// Provider produces one reply given the prior conversation and a new message.
type Provider interface {
	Reply(ctx context.Context, history []model.ChatMessage, message string) (string, error)
	Name() string
}

// New builds the provider selected by cfg.
func New(cfg config.AssistantConfig) (Provider, error) {
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = config.DefaultSystemPrompt
	}
	switch cfg.Provider {
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: anthropic needs an API key", ErrNoProvider)
		}
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, prompt), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: openai needs an API key", ErrNoProvider)
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, prompt), nil
	case "offline", "":
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoProvider, cfg.Provider)
	}
}

// AnthropicProvider uses the Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
	system string
}

func NewAnthropicProvider(apiKey, baseURL, model, system string) *AnthropicProvider {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(3),
	}
	if baseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
		system: system,
	}
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

func (a *AnthropicProvider) Reply(ctx context.Context, history []model.ChatMessage, message string) (string, error) {
	var messages []anthropic.MessageParam
	for _, m := range history {
		// The Messages API wants the conversation to open with a user turn,
		// so a leading greeting is dropped.
		if len(messages) == 0 && m.Role != model.RoleUser {
			continue
		}
		block := anthropic.NewTextBlock(m.Text)
		if m.Role == model.RoleUser {
			messages = append(messages, anthropic.NewUserMessage(block))
		} else {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
		System:    []anthropic.TextBlockParam{*anthropic.NewTextBlock(a.system).OfText},
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic reply failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// OpenAIProvider uses Chat Completions.
type OpenAIProvider struct {
	client openai.Client
	model  string
	system string
}

func NewOpenAIProvider(apiKey, baseURL, model, system string) *OpenAIProvider {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(3),
	}
	if baseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		system: system,
	}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Reply(ctx context.Context, history []model.ChatMessage, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(o.system))
	for _, m := range history {
		if m.Role == model.RoleUser {
			messages = append(messages, openai.UserMessage(m.Text))
		} else {
			messages = append(messages, openai.AssistantMessage(m.Text))
		}
	}
	messages = append(messages, openai.UserMessage(message))

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai reply failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

// Offline answers without a network: it is used when no API key is set.
type Offline struct{}

func (Offline) Name() string { return "offline" }

func (Offline) Reply(ctx context.Context, _ []model.ChatMessage, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("I'm running offline right now, so I can't look that up. You asked: %q. Set ANTHROPIC_API_KEY or OPENAI_API_KEY to talk to a real model.", strings.TrimSpace(message)), nil
}
