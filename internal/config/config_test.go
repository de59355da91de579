package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoadFrom_Defaults(t *testing.T) {
	s, err := LoadFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, 8000, s.Server.Port)
	assert.Equal(t, "release", s.Server.Mode)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, s.Server.CORSOrigins)
	assert.Equal(t, "openai", s.OpenAI.Provider)
	assert.Equal(t, "gpt-4o-mini", s.OpenAI.Model)
	assert.Equal(t, "gpt-image-1-mini", s.OpenAI.ImageModel)
	assert.Equal(t, "https://api.openai.com/v1", s.OpenAI.BaseURL)
	assert.Equal(t, 2*time.Hour, s.Auth.TokenTTL)
	assert.Equal(t, "http://localhost:3000", s.Auth.FrontendBaseURL)
	assert.Equal(t, "moodlet.db", filepath.Base(s.Database.Path))
	assert.False(t, s.Auth.GoogleConfigured())
}

func TestLoadFrom_Environment(t *testing.T) {
	t.Setenv("MOODLET_SERVER_PORT", "9090")
	t.Setenv("MOODLET_SERVER_CORS_ORIGINS", "https://moodlet.app, https://www.moodlet.app")
	t.Setenv("MOODLET_OPENAI_API_KEY", "sk-test")
	t.Setenv("MOODLET_OPENAI_BASE_URL", "http://localhost:1234/v1/")
	t.Setenv("MOODLET_AUTH_TOKEN_TTL", "30m")

	s, err := LoadFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, 9090, s.Server.Port)
	assert.Equal(t, []string{"https://moodlet.app", "https://www.moodlet.app"}, s.Server.CORSOrigins)
	assert.Equal(t, "sk-test", s.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:1234/v1", s.OpenAI.BaseURL)
	assert.Equal(t, 30*time.Minute, s.Auth.TokenTTL)
}

func TestLoadFrom_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8080
  cors_origins:
    - https://a.example.com
auth:
  google_client_id: id
  google_client_secret: secret
  google_redirect_uri: http://localhost:8080/auth/google/callback
  jwt_secret: shh
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 8080, s.Server.Port)
	assert.Equal(t, []string{"https://a.example.com"}, s.Server.CORSOrigins)
	assert.True(t, s.Auth.GoogleConfigured())
	assert.Equal(t, "shh", s.Auth.JWTSecret)
}

func TestLoadFrom_InvalidPort(t *testing.T) {
	v := newViper()
	v.Set("server.port", 70000)

	_, err := LoadFrom(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadFrom_Provider(t *testing.T) {
	v := newViper()
	v.Set("ai.provider", "Anthropic")

	s, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", s.OpenAI.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", s.Anthropic.Model)

	v.Set("ai.provider", "llama")
	_, err = LoadFrom(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestValidateServe(t *testing.T) {
	s, err := LoadFrom(newViper())
	require.NoError(t, err)

	err = s.ValidateServe()
	require.ErrorIs(t, err, common.ErrMissingConfig)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
	assert.Contains(t, err.Error(), "openai.api_key")

	s.Auth.JWTSecret = "secret"
	s.OpenAI.APIKey = "sk-test"
	assert.NoError(t, s.ValidateServe())

	s.OpenAI.Provider = "anthropic"
	err = s.ValidateServe()
	require.ErrorIs(t, err, common.ErrMissingConfig)
	assert.Contains(t, err.Error(), "anthropic.api_key")

	s.Anthropic.APIKey = "sk-ant-test"
	assert.NoError(t, s.ValidateServe())

	s.Server.CORSOrigins = []string{"*"}
	assert.NoError(t, s.ValidateServe())

	s.Server.CORSOrigins = []string{"https://moodlet.app", "moodlet.app"}
	err = s.ValidateServe()
	require.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), `"moodlet.app"`)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MOODLET_DOTENV_CHECK=from-file\n"), 0o600))
	t.Setenv("MOODLET_DOTENV_CHECK", "")
	require.NoError(t, os.Unsetenv("MOODLET_DOTENV_CHECK"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("MOODLET_DOTENV_CHECK"))
}
