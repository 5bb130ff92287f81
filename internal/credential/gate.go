package credential

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"ace/internal/failure"
)

const (
	problemNoSelector = "No API key source is configured."
	problemOpenFailed = "Could not open API key selection dialog."
	problemEmptyKey   = "No API key was entered."
	messageNoKey      = "No API key selected. Please select an API key to continue."
)

// Gate tracks whether a usable API key is selected for one study session.
// It is passed explicitly to whatever needs it; there is no process-wide state.
type Gate struct {
	mu       sync.RWMutex
	selector Selector
	key      string
	selected bool
}

func NewGate(selector Selector) *Gate {
	return &Gate{selector: selector}
}

func (g *Gate) IsSelected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selected
}

// RequestSelection asks the selector for a key and presumes it valid. Failures
// are returned as a problem string for display, never as an error.
func (g *Gate) RequestSelection(ctx context.Context) (bool, string) {
	if g.selector == nil {
		return g.IsSelected(), problemNoSelector
	}

	key, err := g.selector.Select(ctx)
	if err != nil {
		slog.Warn("API key selection failed", "error", err)
		return g.IsSelected(), problemOpenFailed
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return g.IsSelected(), problemEmptyKey
	}

	g.mu.Lock()
	g.key = key
	g.selected = true
	g.mu.Unlock()

	slog.Debug("API key selected")
	return true, ""
}

// Key returns the selected key or a configuration error when none is selected.
func (g *Gate) Key() (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.selected {
		return "", failure.New(failure.Configuration, messageNoKey, errors.New("credential not selected"))
	}
	return g.key, nil
}

// Invalidate drops the selected key after the service rejected it.
func (g *Gate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.key = ""
	g.selected = false
}
