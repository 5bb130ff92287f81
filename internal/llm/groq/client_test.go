package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ace/pkg/prompts"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type groqResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type groqRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func testPrompts() *prompts.Prompts {
	return &prompts.Prompts{
		System: prompts.SystemPrompts{
			Summarize: "You summarize.",
			Quiz:      "You write quizzes as JSON.",
			Tutor:     "You are Ace.",
		},
		Study: prompts.StudyPrompts{
			Summarize: "Summarize: {{.Text}}",
			Quiz:      "Quiz on: {{.Text}}",
			Video:     "Video about {{.Summary}}",
		},
	}
}

func makeGroqResponse(content string) groqResponse {
	resp := groqResponse{
		ID:      "test-id",
		Object:  "chat.completion",
		Created: 1234567890,
		Model:   "llama-3.3-70b-versatile",
		Choices: []chatChoice{
			{
				Message:      chatMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
	}
	resp.Usage.PromptTokens = 10
	resp.Usage.CompletionTokens = 20
	resp.Usage.TotalTokens = 30
	return resp
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient("test-api-key", "llama-3.3-70b-versatile", serverURL, testPrompts())
	if err != nil {
		t.Fatalf("failed to create groq client: %v", err)
	}
	return client
}

// recorder answers every completion with the next reply and keeps the
// decoded requests.
type recorder struct {
	mu       sync.Mutex
	replies  []string
	status   int
	requests []groqRequest
}

func (rec *recorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-api-key" {
			t.Errorf("expected Authorization Bearer test-api-key, got %s", auth)
		}

		var req groqRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		rec.mu.Lock()
		rec.requests = append(rec.requests, req)
		status := rec.status
		reply := ""
		if len(rec.replies) > 0 {
			reply = rec.replies[0]
			rec.replies = rec.replies[1:]
		}
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": {"message": "bad request", "type": "invalid_request_error"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(mustJSON(makeGroqResponse(reply))))
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("  ", "model", "", testPrompts()); err == nil {
		t.Error("NewClient() should fail without an API key")
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name           string
		reply          string
		status         int
		wantErr        bool
		wantErrContain string
		want           string
	}{
		{
			name:  "successfulSummary",
			reply: "Plants turn light into sugar.",
			want:  "Plants turn light into sugar.",
		},
		{
			name:           "emptyResponse",
			reply:          "",
			wantErr:        true,
			wantErrContain: "empty response",
		},
		{
			// groq-go doesn't retry on 401
			name:           "httpErrorUnauthorized",
			status:         http.StatusUnauthorized,
			wantErr:        true,
			wantErrContain: "generate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{replies: []string{tt.reply}, status: tt.status}
			server := httptest.NewServer(rec.handler(t))
			defer server.Close()

			got, err := newTestClient(t, server.URL).Summarize(context.Background(), "Photosynthesis")

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Summarize() expected error containing %q, got nil", tt.wantErrContain)
				}
				if !strings.Contains(err.Error(), tt.wantErrContain) {
					t.Errorf("Summarize() error = %v, want error containing %q", err, tt.wantErrContain)
				}
				return
			}
			if err != nil {
				t.Fatalf("Summarize() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Summarize() = %q, want %q", got, tt.want)
			}

			req := rec.requests[0]
			if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "Summarize: Photosynthesis" {
				t.Errorf("messages = %+v", req.Messages)
			}
			if req.ResponseFormat != nil {
				t.Error("summaries should not request JSON mode")
			}
		})
	}
}

func TestGenerateQuizRequestsJSON(t *testing.T) {
	rec := &recorder{replies: []string{`{"title":"Cells","questions":[]}`}}
	server := httptest.NewServer(rec.handler(t))
	defer server.Close()

	got, err := newTestClient(t, server.URL).GenerateQuiz(context.Background(), "Mitochondria")
	if err != nil {
		t.Fatalf("GenerateQuiz() error: %v", err)
	}
	if !strings.Contains(got, `"title":"Cells"`) {
		t.Errorf("GenerateQuiz() = %q", got)
	}

	req := rec.requests[0]
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", req.ResponseFormat)
	}
	if req.Messages[1].Content != "Quiz on: Mitochondria" {
		t.Errorf("user prompt = %q", req.Messages[1].Content)
	}
}

func TestChatKeepsHistory(t *testing.T) {
	rec := &recorder{replies: []string{"Mitosis splits a cell.", "Yes, two identical cells."}}
	server := httptest.NewServer(rec.handler(t))
	defer server.Close()

	client := newTestClient(t, server.URL)
	chat, err := client.NewChat(context.Background())
	if err != nil {
		t.Fatalf("NewChat() error: %v", err)
	}

	if _, err := chat.Send(context.Background(), "What is mitosis?"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	reply, err := chat.Send(context.Background(), "Two cells?")
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if reply != "Yes, two identical cells." {
		t.Errorf("Send() = %q", reply)
	}

	second := rec.requests[1].Messages
	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(second) != len(wantRoles) {
		t.Fatalf("second request has %d messages, want %d", len(second), len(wantRoles))
	}
	for i, role := range wantRoles {
		if second[i].Role != role {
			t.Errorf("message %d role = %q, want %q", i, second[i].Role, role)
		}
	}
	if second[0].Content != "You are Ace." {
		t.Errorf("system instruction = %q", second[0].Content)
	}
}

func TestChatFailedSendLeavesHistory(t *testing.T) {
	rec := &recorder{status: http.StatusBadRequest}
	server := httptest.NewServer(rec.handler(t))
	defer server.Close()

	chat, _ := newTestClient(t, server.URL).NewChat(context.Background())
	if _, err := chat.Send(context.Background(), "hello"); err == nil {
		t.Fatal("Send() expected error")
	}

	if n := chat.(*Chat).turns(); n != 1 {
		t.Errorf("history has %d messages after failure, want 1", n)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient(t, server.URL).Summarize(ctx, "test"); err == nil {
		t.Error("expected error due to cancelled context, got nil")
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
