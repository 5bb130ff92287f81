package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/conneroisu/groq-go"

	"ace/internal/llm"
	"ace/pkg/prompts"
)

var _ llm.Client = (*Client)(nil)

type Client struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewClient(apiKey, model, baseURL string, p *prompts.Prompts) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GROQ_API_KEY is not set")
	}

	var (
		client *groq.Client
		err    error
	)
	if baseURL != "" {
		client, err = groq.NewClient(apiKey, groq.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/"))
	} else {
		client, err = groq.NewClient(apiKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	prompt, err := c.prompts.RenderSummarize(prompts.SummarizeParams{Text: text})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generate(ctx, c.prompts.System.Summarize, prompt)
}

func (c *Client) GenerateQuiz(ctx context.Context, text string) (string, error) {
	prompt, err := c.prompts.RenderQuiz(prompts.QuizParams{Text: text})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return c.generateJSONContent(ctx, c.prompts.System.Quiz, prompt)
}

func (c *Client) NewChat(_ context.Context) (llm.Chat, error) {
	return &Chat{
		client: c,
		history: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: c.prompts.System.Tutor},
		},
	}, nil
}

// Chat keeps the conversation on the client side; every Send replays it.
type Chat struct {
	client  *Client
	mu      sync.Mutex
	history []groq.ChatCompletionMessage
}

func (ch *Chat) Send(ctx context.Context, message string) (string, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	messages := make([]groq.ChatCompletionMessage, len(ch.history), len(ch.history)+1)
	copy(messages, ch.history)
	messages = append(messages, groq.ChatCompletionMessage{Role: groq.RoleUser, Content: message})

	reply, err := ch.client.complete(ctx, groq.ChatCompletionRequest{
		Model:    ch.client.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	ch.history = append(messages, groq.ChatCompletionMessage{Role: groq.RoleAssistant, Content: reply})
	return reply, nil
}

func (ch *Chat) turns() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.history)
}

func (c *Client) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.doGenerate(ctx, systemPrompt, userPrompt, false)
}

func (c *Client) generateJSONContent(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.doGenerate(ctx, systemPrompt, userPrompt, true)
}

func (c *Client) doGenerate(ctx context.Context, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	req := groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: systemPrompt},
			{Role: groq.RoleUser, Content: userPrompt},
		},
	}

	if jsonMode {
		req.ResponseFormat = &groq.ChatResponseFormat{Type: "json_object"}
	}

	return c.complete(ctx, req)
}

func (c *Client) complete(ctx context.Context, req groq.ChatCompletionRequest) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	return content, nil
}
