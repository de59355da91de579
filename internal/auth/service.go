package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
	"github.com/moodlet/moodlet-backend/internal/service"
)

// ProviderGoogle is the oauth_provider value stored for Google accounts.
const ProviderGoogle = "google"

// IdentityProvider is the OAuth side of the login flow.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*UserInfo, error)
}

// Service signs users in and resolves access tokens back to users.
type Service struct {
	identity    IdentityProvider
	storage     service.Storage
	tokens      *Tokens
	logger      *slog.Logger
	frontendURL string
}

// NewService creates the login service. identity may be nil when Google
// sign-in is not configured.
func NewService(identity IdentityProvider, storage service.Storage, tokens *Tokens, frontendURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		identity:    identity,
		storage:     storage,
		tokens:      tokens,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Enabled reports whether an identity provider is configured.
func (s *Service) Enabled() bool {
	return s.identity != nil
}

// LoginURL returns the provider consent page for state.
func (s *Service) LoginURL(state string) (string, error) {
	if s.identity == nil {
		return "", fmt.Errorf("%w: google login", common.ErrMissingConfig)
	}
	return s.identity.AuthCodeURL(state), nil
}

// Callback completes the login: it resolves the code to a profile, creates
// the user on first sign-in and returns the frontend URL carrying the token.
func (s *Service) Callback(ctx context.Context, code string) (string, error) {
	if s.identity == nil {
		return "", fmt.Errorf("%w: google login", common.ErrMissingConfig)
	}
	if code == "" {
		return "", common.NewUserError("Google login error: missing code", common.ErrInvalidInput)
	}

	info, err := s.identity.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google login failed", "error", err)
		return "", common.NewUserError("Google login error", fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	if info == nil || info.Email == "" {
		return "", common.NewUserError("No userinfo from Google", common.ErrInvalidInput)
	}

	user, err := s.findOrCreate(ctx, info)
	if err != nil {
		return "", err
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	s.logger.Info("user signed in", "user_id", user.ID)
	return s.redirectURL(token, user.Email, user.Name)
}

// CurrentUser returns the user an access token was issued for.
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d no longer exists", common.ErrUnauthorized, userID)
	}
	return user, err
}

// RegisterRequest creates an account directly, bypassing the OAuth flow.
type RegisterRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	OAuthProvider string `json:"oauth_provider"`
	OAuthSubject  string `json:"oauth_subject"`
	ImageURL      string `json:"image_url"`
}

// Register creates a user. An existing email yields ErrDuplicateEntry.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || strings.TrimSpace(req.OAuthProvider) == "" || strings.TrimSpace(req.OAuthSubject) == "" {
		return nil, common.NewUserError("email, oauth_provider and oauth_subject are required", common.ErrInvalidInput)
	}

	user := &model.User{
		Email:         req.Email,
		Name:          req.Name,
		OAuthProvider: req.OAuthProvider,
		OAuthSubject:  req.OAuthSubject,
		ImageURL:      req.ImageURL,
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = displayName(&UserInfo{Email: req.Email})
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return nil, common.NewUserError("Email already registered", err)
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "provider", user.OAuthProvider)
	return user, nil
}

func (s *Service) findOrCreate(ctx context.Context, info *UserInfo) (*model.User, error) {
	user, err := s.storage.GetUserByEmail(ctx, info.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	user = &model.User{
		Email:         info.Email,
		Name:          displayName(info),
		OAuthProvider: ProviderGoogle,
		OAuthSubject:  info.Subject,
	}
	if user.OAuthSubject == "" {
		user.OAuthSubject = info.Email
	}

	err = s.storage.CreateUser(ctx, user)
	if errors.Is(err, common.ErrDuplicateEntry) {
		// Lost a race with a concurrent first sign-in.
		return s.storage.GetUserByEmail(ctx, info.Email)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "provider", ProviderGoogle)
	return user, nil
}

func (s *Service) redirectURL(token, email, name string) (string, error) {
	u, err := url.Parse(s.frontendURL)
	if err != nil {
		return "", fmt.Errorf("%w: frontend url: %w", common.ErrInvalidConfig, err)
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("email", email)
	q.Set("name", name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func displayName(info *UserInfo) string {
	if name := strings.TrimSpace(info.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(info.Email, "@")
	return local
}
