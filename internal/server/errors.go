package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/rhymenet/internal/core"
	"github.com/agenthands/rhymenet/internal/core/compose"
	"github.com/agenthands/rhymenet/internal/core/network"
	"github.com/agenthands/rhymenet/internal/driver"
	"github.com/agenthands/rhymenet/internal/llm"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, network.ErrInvalidSeed),
		errors.Is(err, network.ErrInvalidDepth),
		errors.Is(err, core.ErrNoKeywords),
		errors.Is(err, llm.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSongNotFound):
		return http.StatusNotFound
	case errors.Is(err, driver.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, compose.ErrNoLLM):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
