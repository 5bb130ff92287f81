package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"ace/internal/bookmark"
	"ace/internal/credential"
	"ace/internal/failure"
	"ace/internal/llm"
	"ace/internal/quiz"
	"ace/internal/summarize"
	"ace/internal/tutor"
	"ace/internal/video"
)

const (
	msgSelectKey  = "Please select an API key to generate videos."
	msgNoVideo    = "There is no video yet. Generate one first."
	msgNoSharing  = "Sharing is not configured. Set GCS_BUCKET to enable it."
	msgNoSummary  = "There is no summary to regenerate from. Generate a video first."
	msgShareFails = "Failed to share the video. Please try again."
	msgListFails  = "Failed to list shared videos. Please try again."
)

var ErrNoVideo = errors.New("no video generated")

type VideoResult struct {
	Summary string
	Asset   *video.Asset
}

// Session is one user's study session: its credential, the current video and
// its bookmarks, and a lazily started tutor conversation. State only changes
// when an operation completes.
type Session struct {
	svc          *Service
	gate         *credential.Gate
	text         llm.Client
	summarizer   *summarize.Summarizer
	quizzes      *quiz.Generator
	orchestrator *video.Orchestrator
	bookmarks    bookmark.List

	mu      sync.Mutex
	tutor   *tutor.Session
	asset   *video.Asset
	summary string
}

func newSession(svc *Service, gate *credential.Gate, text llm.Client, orchestrator *video.Orchestrator) *Session {
	return &Session{
		svc:          svc,
		gate:         gate,
		text:         text,
		summarizer:   summarize.New(text),
		quizzes:      quiz.NewGenerator(text),
		orchestrator: orchestrator,
	}
}

func (s *Session) Credential() *credential.Gate {
	return s.gate
}

// SelectKey runs the configured key selection flow.
func (s *Session) SelectKey(ctx context.Context) (bool, string) {
	return s.gate.RequestSelection(ctx)
}

func (s *Session) Summarize(ctx context.Context, text string) (string, error) {
	return s.summarizer.Summarize(ctx, text)
}

func (s *Session) Quiz(ctx context.Context, text string) (*quiz.Quiz, error) {
	return s.quizzes.Generate(ctx, text)
}

// Tutor returns the session's tutor conversation, starting it on first use.
func (s *Session) Tutor() *tutor.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tutor == nil {
		s.tutor = tutor.NewSession(s.text, s.svc.prompts.Tutor.Greeting)
	}
	return s.tutor
}

// GenerateVideo summarizes text and turns the summary into a video. On
// success the new video replaces the current one and bookmarks are cleared;
// on failure the current video is kept. The summary is kept as soon as it
// exists so a failed job can be retried with Regenerate.
func (s *Session) GenerateVideo(ctx context.Context, text string, image *video.Image, onTransition func(video.State, *video.Operation)) (*VideoResult, error) {
	if !s.gate.IsSelected() {
		return nil, failure.New(failure.Configuration, msgSelectKey, errors.New("credential not selected"))
	}

	slog.Info("Summarizing study material...")
	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.summary = summary
	s.mu.Unlock()

	return s.generateFromSummary(ctx, summary, image, onTransition)
}

// Regenerate makes a new video from the last summary.
func (s *Session) Regenerate(ctx context.Context, image *video.Image, onTransition func(video.State, *video.Operation)) (*VideoResult, error) {
	if !s.gate.IsSelected() {
		return nil, failure.New(failure.Configuration, msgSelectKey, errors.New("credential not selected"))
	}

	summary := s.Summary()
	if summary == "" {
		return nil, failure.New(failure.Configuration, msgNoSummary, errors.New("no previous summary"))
	}

	return s.generateFromSummary(ctx, summary, image, onTransition)
}

func (s *Session) generateFromSummary(ctx context.Context, summary string, image *video.Image, onTransition func(video.State, *video.Operation)) (*VideoResult, error) {
	orchestrator := s.orchestrator
	if onTransition != nil {
		orchestrator = orchestrator.WithTransitionHook(onTransition)
	}

	slog.Info("Generating video...")
	asset, err := orchestrator.Generate(ctx, s.gate, summary, image)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	previous := s.asset
	s.asset = asset
	s.summary = summary
	s.bookmarks.Clear()
	s.mu.Unlock()

	if previous != nil {
		if err := previous.Release(); err != nil {
			slog.Warn("Failed to release previous video", "path", previous.Path, "error", err)
		}
	}

	return &VideoResult{Summary: summary, Asset: asset}, nil
}

func (s *Session) Asset() *video.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asset
}

func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *Session) Bookmarks() *bookmark.List {
	return &s.bookmarks
}

// Download saves a copy of the current video. An empty dst uses the configured
// file name in the output directory.
func (s *Session) Download(dst string) (string, error) {
	asset := s.Asset()
	if asset == nil {
		return "", failure.New(failure.Configuration, msgNoVideo, ErrNoVideo)
	}

	if dst == "" {
		cfg := s.svc.cfg
		dst = filepath.Join(cfg.Video.OutputDir, cfg.Video.Filename)
	}

	path, err := s.svc.storage.SaveAs(asset.Bytes, dst)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	slog.Info("Video saved", "path", path)
	return path, nil
}

// Share uploads the current video and returns a link to it.
func (s *Session) Share(ctx context.Context) (string, error) {
	if s.svc.sharer == nil {
		return "", failure.New(failure.Configuration, msgNoSharing, errors.New("no share bucket"))
	}

	asset := s.Asset()
	if asset == nil {
		return "", failure.New(failure.Configuration, msgNoVideo, ErrNoVideo)
	}

	link, err := s.svc.sharer.Share(ctx, filepath.Base(asset.Path), asset.Bytes, asset.MIMEType)
	if err != nil {
		slog.Warn("Share failed", "error", err)
		return "", failure.New(failure.Generation, msgShareFails, err)
	}

	slog.Info("Video shared", "link", link)
	return link, nil
}

// Close releases the current video.
func (s *Session) Close() error {
	s.mu.Lock()
	asset := s.asset
	s.asset = nil
	s.mu.Unlock()

	if asset == nil {
		return nil
	}
	return asset.Release()
}
