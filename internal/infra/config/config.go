package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fmlopez2006-lgtm/prestige-foods/pkg/errors"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	HTTPClient HTTPClientConfig `yaml:"http_client"`
	Limiter    LimiterConfig    `yaml:"limiter"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Export     ExportConfig     `yaml:"export"`
}

type ServerConfig struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPClientConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxRetries     int `yaml:"max_retries"`
}

type LimiterConfig struct {
	MaxConcurrent int     `yaml:"max_concurrent"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

type GeminiConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	ChatModel  string `yaml:"chat_model"`
	VoiceModel string `yaml:"voice_model"`
}

type ExportConfig struct {
	BasePath string `yaml:"base_path"`
	BaseURL  string `yaml:"base_url"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnvOverrides(cfg), nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return applyEnvOverrides(cfg), nil
}

// Validate checks settings that must be present before the first backend
// call. A missing credential is a configuration error the operator has to
// fix; it is never embedded in the binary.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New(errors.ErrCodeConfig, "gemini api key is not configured (set GEMINI_API_KEY)")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTPClient: HTTPClientConfig{
			TimeoutSeconds: 60,
			MaxRetries:     2,
		},
		Limiter: LimiterConfig{
			MaxConcurrent: 10,
			RatePerSecond: 5,
		},
		Gemini: GeminiConfig{
			Model:      "gemini-3-flash-preview",
			ChatModel:  "gemini-3-flash-preview",
			VoiceModel: "gemini-2.5-flash-native-audio-preview-09-2025",
		},
		Export: ExportConfig{
			BasePath: "./output",
			BaseURL:  "/files",
		},
	}
}

func applyEnvOverrides(cfg *Config) *Config {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("GEMINI_CHAT_MODEL"); v != "" {
		cfg.Gemini.ChatModel = v
	}
	if v := os.Getenv("GEMINI_VOICE_MODEL"); v != "" {
		cfg.Gemini.VoiceModel = v
	}
	if v := os.Getenv("EXPORT_BASE_PATH"); v != "" {
		cfg.Export.BasePath = v
	}
	if v := os.Getenv("EXPORT_BASE_URL"); v != "" {
		cfg.Export.BaseURL = v
	}
	return cfg
}
