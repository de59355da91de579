package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return sloggin.NewWithConfig(logger, sloggin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
	})
}

// corsConfig builds the credentialed CORS policy for origins. A "*" entry
// echoes any origin back, since browsers refuse a literal * with credentials.
// ok is false when no usable origin is configured.
func corsConfig(origins []string, logger *slog.Logger) (cfg cors.Config, ok bool) {
	cfg = cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, o := range origins {
		switch {
		case o == "*":
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cfg, true
		case strings.HasPrefix(o, "http://"), strings.HasPrefix(o, "https://"):
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		default:
			logger.Warn("Ignoring CORS origin without scheme", "origin", o)
		}
	}
	return cfg, len(cfg.AllowOrigins) > 0
}
