package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by viper.
const EnvPrefix = "MOODLET"

// Settings is the typed view of the application configuration.
type Settings struct {
	Logging  LoggingSettings
	Server   ServerSettings
	Database DatabaseSettings
	OpenAI    OpenAISettings
	Anthropic AnthropicSettings
	Auth      AuthSettings
}

// LoggingSettings configures the slog handler.
type LoggingSettings struct {
	Level  string
	Format string
}

// ServerSettings configures the HTTP server.
type ServerSettings struct {
	Mode        string
	StaticDir   string
	CORSOrigins []string
	Port        int
}

// DatabaseSettings configures the SQLite store.
type DatabaseSettings struct {
	Path string
}

// OpenAISettings configures the AI client. Provider selects the backend;
// only the OpenAI backend renders images.
type OpenAISettings struct {
	Provider   string
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
	CacheTTL   time.Duration
	RateLimit  int
	MaxRetries int
}

// AnthropicSettings configures the Anthropic chat backend.
type AnthropicSettings struct {
	APIKey string
	Model  string
}

// AuthSettings configures Google login and access tokens.
type AuthSettings struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	FrontendBaseURL    string
	JWTSecret          string
	TokenTTL           time.Duration
}

// GoogleConfigured reports whether every Google OAuth setting is present.
func (a AuthSettings) GoogleConfigured() bool {
	return a.GoogleClientID != "" && a.GoogleClientSecret != "" && a.GoogleRedirectURI != ""
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.static_dir", "static")

	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "moodlet", "moodlet.db"))

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.image_model", "gpt-image-1-mini")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.rate_limit", 60)
	v.SetDefault("openai.max_retries", 3)
	v.SetDefault("openai.cache_ttl", 10*time.Minute)
	v.SetDefault("anthropic.model", "claude-3-5-haiku-latest")

	v.SetDefault("auth.frontend_base_url", "http://localhost:3000")
	v.SetDefault("auth.token_ttl", 2*time.Hour)
}

// BindEnv makes v read MOODLET_SECTION_KEY environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds Settings from the global viper instance.
func Load() (*Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds Settings from v.
func LoadFrom(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Server: ServerSettings{
			Port:        v.GetInt("server.port"),
			Mode:        v.GetString("server.mode"),
			CORSOrigins: splitList(v.GetStringSlice("server.cors_origins")),
			StaticDir:   ExpandPath(v.GetString("server.static_dir")),
		},
		Database: DatabaseSettings{
			Path: ExpandPath(v.GetString("database.path")),
		},
		OpenAI: OpenAISettings{
			Provider:   strings.ToLower(v.GetString("ai.provider")),
			APIKey:     v.GetString("openai.api_key"),
			Model:      v.GetString("openai.model"),
			ImageModel: v.GetString("openai.image_model"),
			BaseURL:    strings.TrimRight(v.GetString("openai.base_url"), "/"),
			RateLimit:  v.GetInt("openai.rate_limit"),
			MaxRetries: v.GetInt("openai.max_retries"),
			CacheTTL:   v.GetDuration("openai.cache_ttl"),
		},
		Anthropic: AnthropicSettings{
			APIKey: v.GetString("anthropic.api_key"),
			Model:  v.GetString("anthropic.model"),
		},
		Auth: AuthSettings{
			GoogleClientID:     v.GetString("auth.google_client_id"),
			GoogleClientSecret: v.GetString("auth.google_client_secret"),
			GoogleRedirectURI:  v.GetString("auth.google_redirect_uri"),
			FrontendBaseURL:    v.GetString("auth.frontend_base_url"),
			JWTSecret:          v.GetString("auth.jwt_secret"),
			TokenTTL:           v.GetDuration("auth.token_ttl"),
		},
	}

	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return nil, fmt.Errorf("%w: server.port %d out of range", common.ErrInvalidConfig, s.Server.Port)
	}
	switch s.OpenAI.Provider {
	case "openai", "anthropic":
	default:
		return nil, fmt.Errorf("%w: ai.provider %q", common.ErrInvalidConfig, s.OpenAI.Provider)
	}
	if s.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("%w: auth.token_ttl must be positive", common.ErrInvalidConfig)
	}

	return s, nil
}

// ValidateServe checks the settings the HTTP server cannot start without.
func (s *Settings) ValidateServe() error {
	var missing []string
	if s.Auth.JWTSecret == "" {
		missing = append(missing, "auth.jwt_secret")
	}
	switch s.OpenAI.Provider {
	case "anthropic":
		if s.Anthropic.APIKey == "" {
			missing = append(missing, "anthropic.api_key")
		}
	default:
		if s.OpenAI.APIKey == "" {
			missing = append(missing, "openai.api_key")
		}
	}
	if s.Database.Path == "" {
		missing = append(missing, "database.path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, strings.Join(missing, ", "))
	}
	for _, o := range s.Server.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("%w: server.cors_origins entry %q needs an http:// or https:// scheme", common.ErrInvalidConfig, o)
		}
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
