package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"ace/internal/video"
)

var _ video.Transport = (*Client)(nil)

func (c *Client) Submit(ctx context.Context, key string, req video.Request) (*video.Operation, error) {
	client, err := c.clientFor(ctx, key)
	if err != nil {
		return nil, err
	}

	op, err := client.Models.GenerateVideos(ctx, c.videoModel, req.Prompt, toImage(req.Image), toVideosConfig(req.Output))
	if err != nil {
		return nil, fmt.Errorf("generate videos: %w", err)
	}

	return fromOperation(op)
}

func (c *Client) Poll(ctx context.Context, key string, op *video.Operation) (*video.Operation, error) {
	if op == nil || op.Name == "" {
		return nil, errors.New("operation has no name")
	}

	client, err := c.clientFor(ctx, key)
	if err != nil {
		return nil, err
	}

	next, err := client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: op.Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("get operation: %w", err)
	}

	return fromOperation(next)
}

func toImage(img *video.Image) *genai.Image {
	if img == nil || len(img.Bytes) == 0 {
		return nil
	}
	return &genai.Image{ImageBytes: img.Bytes, MIMEType: img.MIMEType}
}

func toVideosConfig(out video.OutputConfig) *genai.GenerateVideosConfig {
	return &genai.GenerateVideosConfig{
		NumberOfVideos: int32(out.VideoCount),
		Resolution:     out.Resolution,
		AspectRatio:    out.AspectRatio,
	}
}

// fromOperation converts a genai operation. A server-reported operation error
// becomes a Go error carrying the server message.
func fromOperation(op *genai.GenerateVideosOperation) (*video.Operation, error) {
	if op == nil {
		return nil, errors.New("empty operation")
	}
	if len(op.Error) > 0 {
		return nil, operationError(op)
	}

	out := &video.Operation{Name: op.Name, Done: op.Done}
	if op.Response != nil {
		for _, v := range op.Response.GeneratedVideos {
			if v != nil && v.Video != nil && v.Video.URI != "" {
				out.Result = &video.Result{VideoURI: v.Video.URI}
				break
			}
		}
	}
	return out, nil
}

func operationError(op *genai.GenerateVideosOperation) error {
	msg, _ := op.Error["message"].(string)
	if msg == "" {
		msg = fmt.Sprint(op.Error)
	}
	if code, ok := op.Error["code"]; ok {
		return fmt.Errorf("operation %s failed (code %v): %s", op.Name, code, msg)
	}
	return fmt.Errorf("operation %s failed: %s", op.Name, msg)
}
