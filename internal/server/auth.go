package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moodlet/moodlet-backend/internal/auth"
	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
)

const (
	stateCookie    = "moodlet_oauth_state"
	stateCookieTTL = 600 // seconds
	authPath       = "/auth/google"
)

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	ID    int64  `json:"id"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (s *Server) loginEnabled(c *gin.Context) bool {
	if s.auth == nil || !s.auth.Enabled() {
		s.fail(c, fmt.Errorf("%w: google login", common.ErrMissingConfig))
		return false
	}
	return true
}

func (s *Server) googleLogin(c *gin.Context) {
	if !s.loginEnabled(c) {
		return
	}

	state := auth.NewState()
	target, err := s.auth.LoginURL(state)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, stateCookieTTL, authPath, "", s.cfg.SecureCookies, true)
	c.Redirect(http.StatusFound, target)
}

func (s *Server) googleCallback(c *gin.Context) {
	if !s.loginEnabled(c) {
		return
	}

	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		s.badRequest(c, "Google login error: invalid state")
		return
	}
	c.SetCookie(stateCookie, "", -1, authPath, "", s.cfg.SecureCookies, true)

	target, err := s.auth.Callback(c.Request.Context(), c.Query("code"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, target)
}

func (s *Server) me(c *gin.Context) {
	if s.auth == nil {
		s.fail(c, fmt.Errorf("%w: auth", common.ErrMissingConfig))
		return
	}

	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		s.fail(c, common.ErrUnauthorized)
		return
	}

	user, err := s.auth.CurrentUser(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (s *Server) createUser(c *gin.Context) {
	if s.auth == nil {
		s.fail(c, fmt.Errorf("%w: auth", common.ErrMissingConfig))
		return
	}
	var req auth.RegisterRequest
	if !s.bind(c, &req) {
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
