package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/rhymenet/internal/core/compose"
)

func (s *Server) NextLine(c *gin.Context) {
	var req compose.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := s.RhymeNet.NextLine(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
