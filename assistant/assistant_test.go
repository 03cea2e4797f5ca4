package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"macsim/config"
	"macsim/model"
)

var history = []model.ChatMessage{
	{Role: model.RoleModel, Text: "Hello! How can I help?"},
	{Role: model.RoleUser, Text: "What is Finder?"},
	{Role: model.RoleModel, Text: "The file manager."},
}

func TestAnthropicReply(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		response := map[string]interface{}{
			"id":    "msg_123",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-sonnet-4-5",
			"content": []map[string]interface{}{
				{"type": "text", "text": "Finder browses "},
				{"type": "text", "text": "your files."},
			},
			"stop_reason": "end_turn",
			"usage": map[string]interface{}{
				"input_tokens":  10,
				"output_tokens": 5,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	p := NewAnthropicProvider("sk-ant-test", server.URL, "claude-sonnet-4-5", config.DefaultSystemPrompt)
	reply, err := p.Reply(context.Background(), history, "Tell me more")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Finder browses your files." {
		t.Fatalf("unexpected reply %q", reply)
	}

	messages, _ := got["messages"].([]interface{})
	if len(messages) != 3 {
		t.Fatalf("expected history without the greeting plus the new message, got %d messages", len(messages))
	}
	first, _ := messages[0].(map[string]interface{})
	second, _ := messages[1].(map[string]interface{})
	if first["role"] != "user" || second["role"] != "assistant" {
		t.Fatalf("unexpected roles %v, %v", first["role"], second["role"])
	}
	system, _ := json.Marshal(got["system"])
	if !strings.Contains(string(system), "web-based macOS simulation") {
		t.Fatalf("system prompt missing: %s", system)
	}
}

func TestOpenAIReply(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		response := map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]interface{}{"role": "assistant", "content": "It manages files."},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", server.URL, "gpt-4o", "be brief")
	reply, err := p.Reply(context.Background(), history, "Tell me more")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "It manages files." {
		t.Fatalf("unexpected reply %q", reply)
	}
	messages, _ := got["messages"].([]interface{})
	if len(messages) != 5 {
		t.Fatalf("expected system + history + message, got %d", len(messages))
	}
}

func TestProviderErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("bad", server.URL, "claude-sonnet-4-5", "")
	_, err := p.Reply(context.Background(), nil, "hi")
	if err == nil || !strings.Contains(err.Error(), "anthropic reply failed") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		cfg  config.AssistantConfig
		want string
		err  error
	}{
		{cfg: config.AssistantConfig{Provider: "offline"}, want: "offline"},
		{cfg: config.AssistantConfig{Provider: "anthropic", APIKey: "k"}, want: "anthropic"},
		{cfg: config.AssistantConfig{Provider: "openai", APIKey: "k"}, want: "openai"},
		{cfg: config.AssistantConfig{Provider: "anthropic"}, err: ErrNoProvider},
		{cfg: config.AssistantConfig{Provider: "oracle"}, err: ErrNoProvider},
	}
	for _, tt := range tests {
		p, err := New(tt.cfg)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Fatalf("%+v: expected %v, got %v", tt.cfg, tt.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%+v: unexpected error %v", tt.cfg, err)
		}
		if p.Name() != tt.want {
			t.Fatalf("expected %s, got %s", tt.want, p.Name())
		}
	}
}

func TestOfflineHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Offline{}).Reply(ctx, nil, "hi"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	reply, err := (Offline{}).Reply(context.Background(), nil, " hi ")
	if err != nil || !strings.Contains(reply, `"hi"`) {
		t.Fatalf("unexpected offline reply %q (%v)", reply, err)
	}
}
