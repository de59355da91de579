package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) fromSurvey(c *gin.Context) {
	sessionID, ok := s.parseID(c, "session_id", c.Query("session_id"))
	if !ok {
		return
	}

	rec, err := s.recommend.FromSurvey(c.Request.Context(), sessionID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) getTheme(c *gin.Context) {
	themeID, ok := s.pathID(c, "themeId")
	if !ok {
		return
	}

	theme, err := s.recommend.Theme(c.Request.Context(), themeID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, theme)
}

func (s *Server) getThemeCategory(c *gin.Context) {
	themeID, ok := s.pathID(c, "themeId")
	if !ok {
		return
	}

	items, err := s.recommend.ThemeCategory(c.Request.Context(), themeID, c.Param("category"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) listFurniture(c *gin.Context) {
	main := c.Query("main")
	if main == "" {
		s.badRequest(c, "main is required")
		return
	}

	products, err := s.recommend.Furniture(c.Request.Context(), main, c.Query("sub"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getFurniture(c *gin.Context) {
	productID, ok := s.pathID(c, "product_id")
	if !ok {
		return
	}

	detail, err := s.recommend.FurnitureDetail(c.Request.Context(), productID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
