package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration. It is loaded once at startup and
// only read afterwards, so it is safe to share across requests.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Gemini GeminiConfig `mapstructure:"gemini"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// GeminiConfig configures the generative-model gateway. APIKey may be empty
// at load time; the gateway reports a configuration error per request.
type GeminiConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	TextModel    string        `mapstructure:"text_model"`
	VisionModel  string        `mapstructure:"vision_model"`
	TextTimeout  time.Duration `mapstructure:"text_timeout"`
	MediaTimeout time.Duration `mapstructure:"media_timeout"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8000")
	v.SetDefault("gemini.text_model", "gemini-1.5-flash")
	v.SetDefault("gemini.vision_model", "gemini-1.5-flash")
	v.SetDefault("gemini.text_timeout", "30s")
	v.SetDefault("gemini.media_timeout", "60s")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("gemini.text_model", "GEMINI_TEXT_MODEL")
	v.BindEnv("gemini.vision_model", "GEMINI_VISION_MODEL")
	v.BindEnv("gemini.text_timeout", "GEMINI_TEXT_TIMEOUT")
	v.BindEnv("gemini.media_timeout", "GEMINI_MEDIA_TIMEOUT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &cfg, nil
}
