package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed defaults.yaml
var defaultPrompts []byte

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Study  StudyPrompts  `yaml:"study"`
	Tutor  TutorPrompts  `yaml:"tutor"`
}

type SystemPrompts struct {
	Summarize string `yaml:"summarize"`
	Quiz      string `yaml:"quiz"`
	Tutor     string `yaml:"tutor"`
}

type StudyPrompts struct {
	Summarize string `yaml:"summarize"`
	Quiz      string `yaml:"quiz"`
	Video     string `yaml:"video"`
}

type TutorPrompts struct {
	Greeting string `yaml:"greeting"`
}

type SummarizeParams struct {
	Text string
}

type QuizParams struct {
	Text string
}

type VideoParams struct {
	Summary string
}

// Default returns the prompts built into the binary.
func Default() (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		return nil, fmt.Errorf("failed to parse default prompts: %w", err)
	}
	return &p, nil
}

// Load returns the built-in prompts overlaid with prompts.yaml from the
// working directory, when present.
func Load() (*Prompts, error) {
	p, err := LoadFrom(defaultPromptsPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("No prompts override found, using defaults", "path", defaultPromptsPath)
		return Default()
	}
	return p, err
}

// LoadFrom overlays the file at path on the built-in prompts. Keys missing
// from the file keep their default.
func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	p, err := Default()
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderSummarize(params SummarizeParams) (string, error) {
	return render(p.Study.Summarize, params)
}

func (p *Prompts) RenderQuiz(params QuizParams) (string, error) {
	return render(p.Study.Quiz, params)
}

func (p *Prompts) RenderVideo(params VideoParams) (string, error) {
	return render(p.Study.Video, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
