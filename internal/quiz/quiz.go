package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ace/internal/failure"
)

const (
	optionsPerQuestion = 4

	msgFailed    = "Failed to generate quiz. Please check your input and API key."
	msgMalformed = "The quiz came back in an unexpected format. Please try again."
	msgEmptyText = "Please enter some text to generate a quiz from."
)

type Quiz struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

func (q Question) IsCorrect(option string) bool {
	return option == q.CorrectAnswer
}

// Parse decodes and validates a quiz. Any deviation from the expected shape is
// a MalformedResponse failure.
func Parse(raw string) (*Quiz, error) {
	raw = stripCodeFence(raw)

	var q Quiz
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&q); err != nil {
		return nil, failure.New(failure.MalformedResponse, msgMalformed, fmt.Errorf("decode quiz: %w", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, failure.New(failure.MalformedResponse, msgMalformed, fmt.Errorf("decode quiz: trailing data after object: %v", err))
	}

	if err := q.Validate(); err != nil {
		return nil, failure.New(failure.MalformedResponse, msgMalformed, err)
	}
	return &q, nil
}

func (q *Quiz) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return errors.New("quiz has no title")
	}
	if len(q.Questions) == 0 {
		return errors.New("quiz has no questions")
	}

	for i, question := range q.Questions {
		if strings.TrimSpace(question.Question) == "" {
			return fmt.Errorf("question %d is empty", i+1)
		}
		if len(question.Options) != optionsPerQuestion {
			return fmt.Errorf("question %d has %d options, want %d", i+1, len(question.Options), optionsPerQuestion)
		}

		found := false
		for _, opt := range question.Options {
			if opt == question.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("question %d: correct answer %q is not one of the options", i+1, question.CorrectAnswer)
		}
	}
	return nil
}

// stripCodeFence removes a surrounding ```json fence some models add even in
// JSON mode.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimPrefix(raw, "json")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

type Backend interface {
	GenerateQuiz(ctx context.Context, text string) (string, error)
}

type Generator struct {
	backend Backend
}

func NewGenerator(backend Backend) *Generator {
	return &Generator{backend: backend}
}

func (g *Generator) Generate(ctx context.Context, text string) (*Quiz, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, failure.New(failure.Configuration, msgEmptyText, errors.New("empty input"))
	}

	raw, err := g.backend.GenerateQuiz(ctx, text)
	if err != nil {
		if failure.Is(err, failure.Configuration) {
			return nil, err
		}
		slog.Warn("Quiz generation failed", "error", err)
		return nil, failure.New(failure.Generation, msgFailed, err)
	}

	q, err := Parse(raw)
	if err != nil {
		slog.Warn("Quiz response rejected", "error", errors.Unwrap(err))
		return nil, err
	}

	slog.Debug("Generated quiz", "title", q.Title, "questions", len(q.Questions))
	return q, nil
}
