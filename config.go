package readingquiz

import (
	"fmt"
	"os"
	"strconv"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"
)

// Config is the settings file shared by the CLI and the web server
type Config struct {
	OpenAI  OpenAIConfig      `yaml:"openai"`
	Server  ServerConfig      `yaml:"server"`
	Quiz    GenerationRequest `yaml:"quiz"`
	Storage StorageConfig     `yaml:"storage"`
	Log     LogConfig         `yaml:"log"`
}

// OpenAIConfig configures the generator client
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	MaxAttempts int     `yaml:"max_attempts"`
}

// ServerConfig configures cmd/webserver
type ServerConfig struct {
	Port          string `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
	PrefetchSize  int    `yaml:"prefetch_size"`
	// SecureCookies marks the session cookie Secure. Enable it only behind TLS.
	SecureCookies bool `yaml:"secure_cookies"`
}

// StorageConfig points at the generation audit database. An empty path disables it.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig controls logging
type LogConfig struct {
	Dir     string `yaml:"dir"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the settings used when no file is given
func DefaultConfig() Config {
	return Config{
		OpenAI: OpenAIConfig{
			Model:       openai.GPT3Dot5Turbo,
			Temperature: 0.7,
			MaxTokens:   1200,
			MaxAttempts: 3,
		},
		Server: ServerConfig{
			Port:         "8180",
			PrefetchSize: 1,
		},
		Quiz: DefaultGenerationRequest(),
		Log: LogConfig{
			Dir: "log",
		},
	}
}

// LoadConfig reads a YAML config file over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Server.SessionSecret = v
	}
	if v, err := strconv.ParseBool(os.Getenv("SECURE_COOKIES")); err == nil {
		c.Server.SecureCookies = v
	}
	if v := os.Getenv("QUIZ_DB"); v != "" {
		c.Storage.DBPath = v
	}
}

// Validate checks value ranges. The API key is not required here because
// parsing existing text needs no model access.
func (c *Config) Validate() error {
	if c.OpenAI.Model == "" {
		return fmt.Errorf("invalid config: openai.model is required")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("invalid config: openai.temperature must be between 0 and 2, got %v", c.OpenAI.Temperature)
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("invalid config: openai.max_tokens must be positive, got %d", c.OpenAI.MaxTokens)
	}
	if c.OpenAI.MaxAttempts <= 0 {
		return fmt.Errorf("invalid config: openai.max_attempts must be positive, got %d", c.OpenAI.MaxAttempts)
	}
	if c.Quiz.NumQuestions <= 0 {
		return fmt.Errorf("invalid config: quiz.num_questions must be positive, got %d", c.Quiz.NumQuestions)
	}
	if c.Quiz.Work == "" {
		return fmt.Errorf("invalid config: quiz.work is required")
	}
	if c.Server.PrefetchSize < 0 {
		return fmt.Errorf("invalid config: server.prefetch_size must not be negative, got %d", c.Server.PrefetchSize)
	}
	return nil
}
