package app

import (
	"context"
	"errors"
	"log/slog"

	"ace/internal/credential"
	"ace/internal/failure"
	"ace/internal/llm"
	"ace/internal/storage"
	"ace/internal/video"
	"ace/pkg/config"
	"ace/pkg/prompts"
)

// Backends builds the service clients for one study session around that
// session's credential.
type Backends func(keys *credential.Gate) (llm.Client, video.Transport)

// Sharer publishes a finished video and returns a link to it.
type Sharer interface {
	Share(ctx context.Context, name string, data []byte, mimeType string) (string, error)
	ListShared(ctx context.Context) ([]storage.SharedVideo, error)
	Close() error
}

// Service holds the dependencies shared by every session of one process.
type Service struct {
	cfg      *config.Config
	prompts  *prompts.Prompts
	selector credential.Selector
	backends Backends
	fetcher  video.Fetcher
	storage  *storage.LocalStorage
	sharer   Sharer
	sleeper  video.Sleeper
}

type ServiceOptions struct {
	Config   *config.Config
	Prompts  *prompts.Prompts
	Selector credential.Selector
	Backends Backends
	Fetcher  video.Fetcher
	Storage  *storage.LocalStorage
	Sharer   Sharer
	Sleeper  video.Sleeper
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:      opts.Config,
		prompts:  opts.Prompts,
		selector: opts.Selector,
		backends: opts.Backends,
		fetcher:  opts.Fetcher,
		storage:  opts.Storage,
		sharer:   opts.Sharer,
		sleeper:  opts.Sleeper,
	}
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

func (s *Service) Prompts() *prompts.Prompts {
	return s.prompts
}

func (s *Service) Storage() *storage.LocalStorage {
	return s.storage
}

func (s *Service) Sharer() Sharer {
	return s.sharer
}

func (s *Service) CanShare() bool {
	return s.sharer != nil
}

// ListShared returns the videos uploaded so far, with fresh links.
func (s *Service) ListShared(ctx context.Context) ([]storage.SharedVideo, error) {
	if s.sharer == nil {
		return nil, failure.New(failure.Configuration, msgNoSharing, errors.New("no share bucket"))
	}

	videos, err := s.sharer.ListShared(ctx)
	if err != nil {
		slog.Warn("Listing shared videos failed", "error", err)
		return nil, failure.New(failure.Generation, msgListFails, err)
	}
	return videos, nil
}

func (s *Service) Close() error {
	if s.sharer != nil {
		return s.sharer.Close()
	}
	return nil
}

// NewSession starts a study session with its own credential state.
func (s *Service) NewSession() *Session {
	gate := credential.NewGate(s.selector)
	text, transport := s.backends(gate)

	orchestrator := video.NewOrchestrator(video.Options{
		Transport: transport,
		Fetcher:   s.fetcher,
		Store:     s.storage,
		Prompts:   s.prompts,
		Output: video.OutputConfig{
			VideoCount:  s.cfg.Video.Count,
			Resolution:  s.cfg.Video.Resolution,
			AspectRatio: s.cfg.Video.AspectRatio,
		},
		PollInterval: s.cfg.Video.PollInterval,
		Sleeper:      s.sleeper,
	})

	return newSession(s, gate, text, orchestrator)
}
