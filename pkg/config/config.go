package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath   = "config.yaml"
	defaultProvider     = ProviderGemini
	defaultTextModel    = "gemini-2.5-flash"
	defaultVideoModel   = "veo-3.1-fast-generate-preview"
	defaultGroqModel    = "llama-3.3-70b-versatile"
	defaultResolution   = "720p"
	defaultAspectRatio  = "16:9"
	defaultVideoCount   = 1
	defaultPollInterval = 10 * time.Second
	defaultOutputDir    = "./output"
	defaultFilename     = "ace-ai-video.mp4"
	defaultSharePrefix  = "ace/videos"
	defaultLinkTTL      = 24 * time.Hour
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

type Config struct {
	GeminiAPIKey    string `yaml:"-"`
	GeminiKeySecret string `yaml:"-"`
	GroqAPIKey      string `yaml:"-"`
	GCSBucket       string `yaml:"-"`

	LLM    LLMConfig    `yaml:"llm"`
	Gemini GeminiConfig `yaml:"gemini"`
	Groq   GroqConfig   `yaml:"groq"`
	Video  VideoConfig  `yaml:"video"`
	Share  ShareConfig  `yaml:"share"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "groq"
}

type GeminiConfig struct {
	TextModel  string `yaml:"text_model"`
	VideoModel string `yaml:"video_model"`
	BaseURL    string `yaml:"base_url"`
}

type GroqConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type VideoConfig struct {
	Resolution   string        `yaml:"resolution"`
	AspectRatio  string        `yaml:"aspect_ratio"`
	Count        int           `yaml:"count"`
	PollInterval time.Duration `yaml:"poll_interval"`
	OutputDir    string        `yaml:"output_dir"`
	Filename     string        `yaml:"filename"`
}

type ShareConfig struct {
	Prefix  string        `yaml:"prefix"`
	LinkTTL time.Duration `yaml:"link_ttl"`
}

// Load reads .env, then the YAML file named by ACE_CONFIG (config.yaml by
// default), then fills defaults. Missing files only warn.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GeminiAPIKey:    firstEnv("GEMINI_API_KEY", "API_KEY"),
		GeminiKeySecret: os.Getenv("GEMINI_API_KEY_SECRET"),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
	}

	if err := loadYAMLConfig(cfg, getEnvOrDefault("ACE_CONFIG", defaultConfigPath)); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("No config file found, using defaults", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderGroq:
	default:
		return fmt.Errorf("unknown llm provider %q (want %q or %q)", c.LLM.Provider, ProviderGemini, ProviderGroq)
	}
	if c.Video.Count < 1 {
		return fmt.Errorf("video count must be at least 1, got %d", c.Video.Count)
	}
	if c.Video.PollInterval < 0 {
		return fmt.Errorf("video poll interval must not be negative, got %s", c.Video.PollInterval)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyLLMDefaults(cfg)
	applyGeminiDefaults(cfg)
	applyGroqDefaults(cfg)
	applyVideoDefaults(cfg)
	applyShareDefaults(cfg)
}

func applyLLMDefaults(cfg *Config) {
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = defaultProvider
	}
}

func applyGeminiDefaults(cfg *Config) {
	if cfg.Gemini.TextModel == "" {
		cfg.Gemini.TextModel = defaultTextModel
	}
	if cfg.Gemini.VideoModel == "" {
		cfg.Gemini.VideoModel = defaultVideoModel
	}
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.Resolution == "" {
		cfg.Video.Resolution = defaultResolution
	}
	if cfg.Video.AspectRatio == "" {
		cfg.Video.AspectRatio = defaultAspectRatio
	}
	if cfg.Video.Count == 0 {
		cfg.Video.Count = defaultVideoCount
	}
	if cfg.Video.PollInterval == 0 {
		cfg.Video.PollInterval = defaultPollInterval
	}
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = defaultOutputDir
	}
	if cfg.Video.Filename == "" {
		cfg.Video.Filename = defaultFilename
	}
}

func applyShareDefaults(cfg *Config) {
	if cfg.Share.Prefix == "" {
		cfg.Share.Prefix = defaultSharePrefix
	}
	if cfg.Share.LinkTTL == 0 {
		cfg.Share.LinkTTL = defaultLinkTTL
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
