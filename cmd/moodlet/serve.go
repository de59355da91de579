package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/moodlet/moodlet-backend/internal/auth"
	"github.com/moodlet/moodlet-backend/internal/config"
	"github.com/moodlet/moodlet-backend/internal/llm"
	"github.com/moodlet/moodlet-backend/internal/media"
	"github.com/moodlet/moodlet-backend/internal/recommend"
	"github.com/moodlet/moodlet-backend/internal/server"
	"github.com/moodlet/moodlet-backend/internal/survey"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API serving the survey, recommendation, furniture and
Google login routes. Generated images are written to and served from the
static directory.`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 8000, "Port to listen on")
	cmd.Flags().String("static-dir", "static", "Directory served under /static")

	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.static_dir", cmd.Flags().Lookup("static-dir"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if err := settings.ValidateServe(); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := slog.Default()

	store, err := openStorage(ctx, settings.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ai, err := llm.NewClient(llmConfig(settings), logger)
	if err != nil {
		return err
	}
	defer ai.Close()

	if err := config.EnsureDir(settings.Server.StaticDir, 0o755); err != nil {
		return err
	}
	images := media.NewStore(settings.Server.StaticDir)

	tokens, err := auth.NewTokens(settings.Auth.JWTSecret, settings.Auth.TokenTTL)
	if err != nil {
		return err
	}
	var identity auth.IdentityProvider
	if settings.Auth.GoogleConfigured() {
		identity = auth.NewGoogle(auth.GoogleConfig{
			ClientID:     settings.Auth.GoogleClientID,
			ClientSecret: settings.Auth.GoogleClientSecret,
			RedirectURL:  settings.Auth.GoogleRedirectURI,
		})
	} else {
		logger.Warn("Google login disabled: auth.google_client_id, auth.google_client_secret and auth.google_redirect_uri are required")
	}

	srv := server.New(server.Config{
		Mode:          settings.Server.Mode,
		Images:        images,
		CORSOrigins:   settings.Server.CORSOrigins,
		SecureCookies: strings.HasPrefix(settings.Auth.GoogleRedirectURI, "https://"),
	},
		survey.NewService(store, ai, images, logger),
		recommend.NewService(store, logger),
		auth.NewService(identity, store, tokens, settings.Auth.FrontendBaseURL, logger),
		logger,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening",
			"addr", httpServer.Addr,
			"provider", settings.OpenAI.Provider,
			"google_login", identity != nil)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func llmConfig(s *config.Settings) llm.Config {
	cfg := llm.Config{
		Provider:   s.OpenAI.Provider,
		APIKey:     s.OpenAI.APIKey,
		Model:      s.OpenAI.Model,
		ImageModel: s.OpenAI.ImageModel,
		BaseURL:    s.OpenAI.BaseURL,
		MaxRetries: s.OpenAI.MaxRetries,
		CacheTTL:   s.OpenAI.CacheTTL,
		RateLimit:  s.OpenAI.RateLimit,
		Timeout:    2 * time.Minute,
	}
	if s.OpenAI.Provider == "anthropic" {
		cfg.APIKey = s.Anthropic.APIKey
		cfg.Model = s.Anthropic.Model
		cfg.BaseURL = ""
	}
	return cfg
}
