package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moodlet/moodlet-backend/internal/survey"
)

func (s *Server) getForm(c *gin.Context) {
	form, err := s.survey.Form(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (s *Server) getGlobalQuestions(c *gin.Context) {
	form, err := s.survey.Form(c.Request.Context(), survey.DefaultFormCode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (s *Server) startSession(c *gin.Context) {
	var req survey.StartRequest
	if !s.bindOptional(c, &req) {
		return
	}

	result, err := s.survey.StartSession(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) saveAnswers(c *gin.Context) {
	sessionID, ok := s.pathID(c, "session_id")
	if !ok {
		return
	}
	var req survey.SaveAnswersRequest
	if !s.bind(c, &req) {
		return
	}

	if err := s.survey.SaveAnswers(c.Request.Context(), sessionID, req); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) followup(c *gin.Context) {
	var req survey.FollowupRequest
	if !s.bind(c, &req) {
		return
	}

	result, err := s.survey.Followup(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) finalAnalysis(c *gin.Context) {
	var req survey.FinalRequest
	if !s.bind(c, &req) {
		return
	}

	result, err := s.survey.FinalAnalysis(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindOptional accepts an empty body as the zero request.
func (s *Server) bindOptional(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) pathID(c *gin.Context, name string) (int64, bool) {
	return s.parseID(c, name, c.Param(name))
}

func (s *Server) parseID(c *gin.Context, name, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
