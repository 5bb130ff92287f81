package summarize

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ace/internal/failure"
)

const (
	msgFailed    = "Failed to summarize content. Please check your API key and try again."
	msgEmptyText = "Please enter some text to summarize."
)

type Backend interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Summarizer struct {
	backend Backend
}

func New(backend Backend) *Summarizer {
	return &Summarizer{backend: backend}
}

// Summarize condenses study text into a short script. Configuration errors
// from the backend pass through; anything else becomes a generation failure.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", failure.New(failure.Configuration, msgEmptyText, errors.New("empty input"))
	}

	summary, err := s.backend.Summarize(ctx, text)
	if err != nil {
		if failure.Is(err, failure.Configuration) {
			return "", err
		}
		slog.Warn("Summarize failed", "error", err)
		return "", failure.New(failure.Generation, msgFailed, err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", failure.New(failure.Generation, msgFailed, errors.New("empty summary"))
	}

	slog.Debug("Summarized study text", "input_chars", len(text), "summary_chars", len(summary))
	return summary, nil
}
