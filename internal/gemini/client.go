package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"ace/internal/llm"
	"ace/pkg/prompts"
)

var _ llm.Client = (*Client)(nil)

// KeySource yields the API key for the current study session.
type KeySource interface {
	Key() (string, error)
}

type Options struct {
	TextModel  string
	VideoModel string
	BaseURL    string
}

// Client talks to the Gemini API. It holds no key of its own: text calls read
// it from keys, video calls receive it explicitly. One genai client is kept per
// distinct key.
type Client struct {
	keys       KeySource
	textModel  string
	videoModel string
	baseURL    string
	prompts    *prompts.Prompts

	mu      sync.Mutex
	clients map[string]*genai.Client
}

var quizSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {Type: genai.TypeString, Description: "A short title for the quiz"},
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question":      {Type: genai.TypeString},
					"options":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"correctAnswer": {Type: genai.TypeString, Description: "The exact text of the correct option"},
				},
				Required: []string{"question", "options", "correctAnswer"},
			},
		},
	},
	Required: []string{"title", "questions"},
}

func NewClient(keys KeySource, opts Options, p *prompts.Prompts) *Client {
	return &Client{
		keys:       keys,
		textModel:  opts.TextModel,
		videoModel: opts.VideoModel,
		baseURL:    opts.BaseURL,
		prompts:    p,
		clients:    make(map[string]*genai.Client),
	}
}

func (c *Client) clientFor(ctx context.Context, key string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	c.clients[key] = client
	return client, nil
}

func (c *Client) sessionClient(ctx context.Context) (*genai.Client, error) {
	key, err := c.keys.Key()
	if err != nil {
		return nil, err
	}
	return c.clientFor(ctx, key)
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
	return c.generateJSON(ctx, c.prompts.System.Quiz, prompt, quizSchema)
}

func (c *Client) NewChat(ctx context.Context) (llm.Chat, error) {
	client, err := c.sessionClient(ctx)
	if err != nil {
		return nil, err
	}

	chat, err := client.Chats.Create(ctx, c.textModel, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(c.prompts.System.Tutor),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	return &Chat{chat: chat}, nil
}

// Chat wraps a server-side conversation. genai records a turn only when the
// send succeeds.
type Chat struct {
	mu   sync.Mutex
	chat *genai.Chat
}

func (ch *Chat) Send(ctx context.Context, message string) (string, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	resp, err := ch.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return responseText(resp)
}

func (c *Client) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(systemPrompt),
	}
	return c.call(ctx, userPrompt, config)
}

func (c *Client) generateJSON(ctx context.Context, systemPrompt, userPrompt string, schema *genai.Schema) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(systemPrompt),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}
	return c.call(ctx, userPrompt, config)
}

func (c *Client) call(ctx context.Context, userPrompt string, config *genai.GenerateContentConfig) (string, error) {
	client, err := c.sessionClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, c.textModel, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return responseText(resp)
}

func systemInstruction(text string) *genai.Content {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response")
	}
	return sb.String(), nil
}
