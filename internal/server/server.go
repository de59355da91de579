// Package server exposes the survey, recommendation and login flows over HTTP
// with gin.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/moodlet/moodlet-backend/internal/auth"
	"github.com/moodlet/moodlet-backend/internal/media"
	"github.com/moodlet/moodlet-backend/internal/recommend"
	"github.com/moodlet/moodlet-backend/internal/survey"
)

// Config holds the HTTP layer settings.
type Config struct {
	// Mode is a gin mode (debug, release, test). Empty keeps the current mode.
	Mode string
	// Images serves the generated images under media.URLPrefix. Nil disables
	// the static route.
	Images      *media.Store
	CORSOrigins []string
	// SecureCookies marks the OAuth state cookie Secure.
	SecureCookies bool
}

// Server routes requests to the application services.
type Server struct {
	router    *gin.Engine
	survey    *survey.Service
	recommend *recommend.Service
	auth      *auth.Service
	logger    *slog.Logger
	cfg       Config
}

// New builds the router. auth may be nil, in which case the login routes
// answer 503.
func New(cfg Config, surveys *survey.Service, recs *recommend.Service, authSvc *auth.Service, logger *slog.Logger) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:    gin.New(),
		survey:    surveys,
		recommend: recs,
		auth:      authSvc,
		logger:    logger,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), requestLogger(s.logger))
	if cfg, ok := corsConfig(s.cfg.CORSOrigins, s.logger); ok {
		s.router.Use(cors.New(cfg))
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	surveys := s.router.Group("/survey")
	{
		surveys.GET("/forms/:code", s.getForm)
		surveys.GET("/global-questions", s.getGlobalQuestions)
		surveys.POST("/sessions", s.startSession)
		surveys.POST("/sessions/:session_id/answers", s.saveAnswers)
		surveys.POST("/followup", s.followup)
		surveys.POST("/final-analysis", s.finalAnalysis)
	}

	recs := s.router.Group("/recommendations")
	{
		recs.POST("/from-survey", s.fromSurvey)
		recs.GET("/themes/:themeId", s.getTheme)
		recs.GET("/themes/:themeId/:category", s.getThemeCategory)
	}

	furniture := s.router.Group("/furniture")
	{
		furniture.GET("", s.listFurniture)
		furniture.GET("/:product_id", s.getFurniture)
	}

	googleAuth := s.router.Group("/auth/google")
	{
		googleAuth.GET("/login", s.googleLogin)
		googleAuth.GET("/callback", s.googleCallback)
		googleAuth.GET("/me", s.me)
	}

	s.router.POST("/users", s.createUser)

	if s.cfg.Images != nil {
		s.router.GET(media.URLPrefix+"/*filepath", s.getStatic)
		s.router.HEAD(media.URLPrefix+"/*filepath", s.getStatic)
	}
}
