package app

import (
	"context"
	"fmt"
	"log/slog"

	"ace/internal/credential"
	"ace/internal/gemini"
	"ace/internal/llm"
	"ace/internal/llm/groq"
	"ace/internal/storage"
	"ace/internal/video"
	"ace/pkg/config"
	"ace/pkg/httputil"
	"ace/pkg/prompts"
)

type BuildOptions struct {
	// Interactive allows asking for the key in the terminal when no other
	// source has one.
	Interactive bool
}

func BuildService(ctx context.Context, cfg *config.Config, opts BuildOptions) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	localStorage := storage.NewLocalStorage(cfg.Video.OutputDir)
	if err := localStorage.EnsureDirectories(); err != nil {
		return nil, err
	}

	var sharer Sharer
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.Share.Prefix, cfg.Share.LinkTTL)
		if err != nil {
			slog.Warn("Sharing disabled", "bucket", cfg.GCSBucket, "error", err)
		} else {
			sharer = gcs
		}
	}

	backends, err := newBackends(cfg, p)
	if err != nil {
		return nil, err
	}

	return NewService(ServiceOptions{
		Config:   cfg,
		Prompts:  p,
		Selector: newSelector(cfg, opts),
		Backends: backends,
		Fetcher:  httputil.NewFetcher(nil),
		Storage:  localStorage,
		Sharer:   sharer,
		Sleeper:  video.TimerSleeper{},
	}), nil
}

func newSelector(cfg *config.Config, opts BuildOptions) credential.Selector {
	chain := credential.Chain{
		credential.EnvSelector{"GEMINI_API_KEY", "API_KEY"},
		credential.NewSecretSelector(cfg.GeminiKeySecret),
	}
	if opts.Interactive {
		chain = append(chain, credential.PromptSelector{})
	}
	return chain
}

func newBackends(cfg *config.Config, p *prompts.Prompts) (Backends, error) {
	geminiOpts := gemini.Options{
		TextModel:  cfg.Gemini.TextModel,
		VideoModel: cfg.Gemini.VideoModel,
		BaseURL:    cfg.Gemini.BaseURL,
	}

	var text llm.Client
	if cfg.LLM.Provider == config.ProviderGroq {
		client, err := groq.NewClient(cfg.GroqAPIKey, cfg.Groq.Model, cfg.Groq.BaseURL, p)
		if err != nil {
			return nil, fmt.Errorf("groq provider: %w", err)
		}
		text = client
	}

	return func(keys *credential.Gate) (llm.Client, video.Transport) {
		client := gemini.NewClient(keys, geminiOpts, p)
		if text != nil {
			return text, client
		}
		return client, client
	}, nil
}
