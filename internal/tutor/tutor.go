package tutor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"ace/internal/failure"
	"ace/internal/llm"
)

const msgSendFailed = "Sorry, something went wrong. Please try again."

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role Role
	Text string
}

type ChatFactory interface {
	NewChat(ctx context.Context) (llm.Chat, error)
}

// Session is one tutoring conversation. History is append-only and starts
// with the tutor's greeting. Sends are serialized; History stays readable
// while a send is in flight.
type Session struct {
	sendMu  sync.Mutex
	factory ChatFactory
	chat    llm.Chat

	mu      sync.Mutex
	history []Message
}

func NewSession(factory ChatFactory, greeting string) *Session {
	s := &Session{factory: factory}
	if greeting != "" {
		s.history = append(s.history, Message{Role: RoleModel, Text: greeting})
	}
	return s
}

// Send records the user's message, then asks the tutor. On failure the user
// message stays in the history and the session remains usable.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", failure.New(failure.Configuration, "Please type a message first.", errors.New("empty message"))
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.appendTurn(Message{Role: RoleUser, Text: text})

	if s.chat == nil {
		chat, err := s.factory.NewChat(ctx)
		if err != nil {
			return "", s.fail(err)
		}
		s.chat = chat
	}

	reply, err := s.chat.Send(ctx, text)
	if err != nil {
		return "", s.fail(err)
	}

	s.appendTurn(Message{Role: RoleModel, Text: reply})
	return reply, nil
}

func (s *Session) appendTurn(m Message) {
	s.mu.Lock()
	s.history = append(s.history, m)
	s.mu.Unlock()
}

func (s *Session) fail(err error) error {
	if failure.Is(err, failure.Configuration) {
		return err
	}
	slog.Warn("Tutor message failed", "error", err)
	return failure.New(failure.Generation, msgSendFailed, err)
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}
