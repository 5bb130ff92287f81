package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/charmbracelet/huh"
)

var ErrNoKey = errors.New("no API key available")

type Selector interface {
	Select(ctx context.Context) (string, error)
}

// Static yields a key known up front, typically GEMINI_API_KEY.
type Static string

func (s Static) Select(_ context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrNoKey
	}
	return string(s), nil
}

// Chain returns the key from the first selector that has one. Selectors
// reporting ErrNoKey are skipped; any other error stops the chain.
type Chain []Selector

func (c Chain) Select(ctx context.Context) (string, error) {
	for _, s := range c {
		if s == nil {
			continue
		}
		key, err := s.Select(ctx)
		if errors.Is(err, ErrNoKey) {
			continue
		}
		if err != nil {
			return "", err
		}
		return key, nil
	}
	return "", ErrNoKey
}

// SecretSelector reads the key from Google Cloud Secret Manager.
type SecretSelector struct {
	name string
}

func NewSecretSelector(name string) *SecretSelector {
	return &SecretSelector{name: secretVersionName(name)}
}

func (s *SecretSelector) Select(ctx context.Context) (string, error) {
	if s.name == "" {
		return "", ErrNoKey
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: s.name})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", s.name, err)
	}

	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

func secretVersionName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.Contains(name, "/versions/") {
		return name
	}
	return name + "/versions/latest"
}

// PromptSelector asks for the key in the terminal.
type PromptSelector struct{}

func (PromptSelector) Select(ctx context.Context) (string, error) {
	var key string
	input := huh.NewInput().
		Title("Gemini API key").
		Description("Video generation needs a key from a billing-enabled project.").
		EchoMode(huh.EchoModePassword).
		Value(&key)
	err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("prompt for key: %w", err)
	}
	return key, nil
}

// EnvSelector reads the key from the first non-empty environment variable.
type EnvSelector []string

func (e EnvSelector) Select(_ context.Context) (string, error) {
	for _, name := range e {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", ErrNoKey
}
