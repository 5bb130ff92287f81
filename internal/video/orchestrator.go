package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ace/internal/credential"
	"ace/internal/failure"
	"ace/pkg/httputil"
	"ace/pkg/prompts"
)

const (
	DefaultPollInterval = 10 * time.Second

	msgCredentialInvalid = "API key validation failed. Please select a valid API key and try again."
	msgGenerationFailed  = "Failed to generate video. This is an experimental feature and may take a few minutes."
	msgResultMissing     = "Video generation completed, but no download link was found."
	msgNoSummary         = "There is nothing to make a video from. Summarize some study material first."
)

// Transport talks to the video generation service. The key is passed on every
// call; transports hold no credential state of their own.
type Transport interface {
	Submit(ctx context.Context, key string, req Request) (*Operation, error)
	Poll(ctx context.Context, key string, op *Operation) (*Operation, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL, key string) (*httputil.Payload, error)
}

type AssetStore interface {
	Materialize(ctx context.Context, data []byte, mimeType string) (string, error)
	Release(path string) error
}

type Options struct {
	Transport    Transport
	Fetcher      Fetcher
	Store        AssetStore
	Prompts      *prompts.Prompts
	Output       OutputConfig
	PollInterval time.Duration
	Sleeper      Sleeper
	OnTransition func(state State, op *Operation)
}

// Orchestrator drives one generation job from submission to a playable asset.
// Concurrent Generate calls are independent jobs.
type Orchestrator struct {
	transport    Transport
	fetcher      Fetcher
	store        AssetStore
	prompts      *prompts.Prompts
	output       OutputConfig
	interval     time.Duration
	sleeper      Sleeper
	onTransition func(State, *Operation)
}

func NewOrchestrator(opts Options) *Orchestrator {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = TimerSleeper{}
	}

	output := opts.Output
	if output.VideoCount <= 0 {
		output.VideoCount = 1
	}

	return &Orchestrator{
		transport:    opts.Transport,
		fetcher:      opts.Fetcher,
		store:        opts.Store,
		prompts:      opts.Prompts,
		output:       output,
		interval:     interval,
		sleeper:      sleeper,
		onTransition: opts.OnTransition,
	}
}

// WithTransitionHook returns a copy of o that reports state changes to fn.
func (o *Orchestrator) WithTransitionHook(fn func(State, *Operation)) *Orchestrator {
	c := *o
	c.onTransition = fn
	return &c
}

// Generate submits a job for summary, polls it until the service reports it
// done, then downloads the video. Errors are *failure.Error values. A
// credential rejection invalidates gate.
func (o *Orchestrator) Generate(ctx context.Context, gate *credential.Gate, summary string, image *Image) (*Asset, error) {
	if strings.TrimSpace(summary) == "" {
		return nil, failure.New(failure.Configuration, msgNoSummary, errors.New("empty summary"))
	}

	key, err := gate.Key()
	if err != nil {
		return nil, err
	}

	req, err := o.buildRequest(summary, image)
	if err != nil {
		return nil, o.fail(gate, nil, err)
	}

	op, err := o.transport.Submit(ctx, key, req)
	if err != nil {
		return nil, o.fail(gate, op, fmt.Errorf("submit generation: %w", err))
	}
	if op == nil {
		return nil, o.fail(gate, nil, errors.New("submit generation: no operation returned"))
	}

	state := StateSubmitted
	o.transition(state, op)
	slog.Info("Video generation submitted", "operation", op.Name)

	for !state.Terminal() {
		switch state {
		case StateSubmitted:
			if op.Done {
				state = StateDone
			} else {
				state = StatePolling
			}
			o.transition(state, op)

		case StatePolling:
			if op.Done {
				state = StateDone
				o.transition(state, op)
				continue
			}

			if err := o.sleeper.Sleep(ctx, o.interval); err != nil {
				return nil, o.fail(gate, op, fmt.Errorf("wait for operation: %w", err))
			}

			next, err := o.transport.Poll(ctx, key, op)
			if err != nil {
				return nil, o.fail(gate, op, fmt.Errorf("poll operation %s: %w", op.Name, err))
			}
			if next == nil {
				return nil, o.fail(gate, op, fmt.Errorf("poll operation %s: empty response", op.Name))
			}
			op = next
			slog.Debug("Polled video operation", "operation", op.Name, "done", op.Done)
		}
	}

	asset, err := o.materialize(ctx, key, op)
	if err != nil {
		return nil, o.fail(gate, op, err)
	}

	slog.Info("Video ready", "operation", op.Name, "path", asset.Path, "bytes", len(asset.Bytes))
	return asset, nil
}

func (o *Orchestrator) buildRequest(summary string, image *Image) (Request, error) {
	prompt, err := o.prompts.RenderVideo(prompts.VideoParams{Summary: summary})
	if err != nil {
		return Request{}, fmt.Errorf("render prompt: %w", err)
	}

	req := Request{Prompt: prompt, Output: o.output}
	if image != nil && len(image.Bytes) > 0 {
		req.Image = image
	}
	return req, nil
}

func (o *Orchestrator) materialize(ctx context.Context, key string, op *Operation) (*Asset, error) {
	uri := op.videoURI()
	if uri == "" {
		return nil, failure.New(failure.ResultMissing, msgResultMissing,
			fmt.Errorf("operation %s finished without a video uri", op.Name))
	}

	payload, err := o.fetcher.Fetch(ctx, uri, key)
	if err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, errors.New("download video: empty payload")
	}

	mimeType := payload.ContentType
	if mimeType == "" || !strings.HasPrefix(mimeType, "video/") {
		mimeType = defaultVideoMIME
	}

	path, err := o.store.Materialize(ctx, payload.Data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}

	return newAsset(path, payload.Data, mimeType, op.Name, o.store.Release), nil
}

func (o *Orchestrator) fail(gate *credential.Gate, op *Operation, err error) error {
	o.transition(StateFailed, op)

	kind := failure.Classify(err)
	slog.Warn("Video generation failed", "kind", kind, "error", err)

	switch kind {
	case failure.CredentialInvalid:
		gate.Invalidate()
		return failure.New(failure.CredentialInvalid, msgCredentialInvalid, err)
	case failure.Generation:
		return failure.New(failure.Generation, msgGenerationFailed, err)
	default:
		return err
	}
}

func (o *Orchestrator) transition(state State, op *Operation) {
	if o.onTransition != nil {
		o.onTransition(state, op)
	}
}
