package server

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// getStatic serves files written by the image store. Directories and paths
// outside the static root are reported as missing.
func (s *Server) getStatic(c *gin.Context) {
	path, ok := s.cfg.Images.Path(c.Request.URL.Path)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}
	c.File(path)
}
