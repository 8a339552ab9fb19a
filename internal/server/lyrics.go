package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/rhymenet/internal/core/lyrics"
	"github.com/agenthands/rhymenet/internal/core/model"
	"github.com/agenthands/rhymenet/internal/llm"
)

type SimpleRequest struct {
	Word       string          `json:"word" binding:"required"`
	AllMatches bool            `json:"all_matches"`
	Filters    model.FilterSet `json:"filters"`
}

func (s *Server) SimpleSearch(c *gin.Context) {
	var req SimpleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := s.RhymeNet.SimpleSearch(c.Request.Context(), req.Word, req.AllMatches, req.Filters)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// FigurativeRequest takes explicit keywords, or a type (simile or metaphor)
// that selects the built-in keyword list.
type FigurativeRequest struct {
	Keywords []string        `json:"keywords"`
	Type     string          `json:"type" binding:"omitempty,oneof=simile metaphor"`
	Filters  model.FilterSet `json:"filters"`
}

func (s *Server) FigurativeSearch(c *gin.Context) {
	var req FigurativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	keywords := req.Keywords
	if len(keywords) == 0 {
		switch req.Type {
		case "simile":
			keywords = lyrics.SimileKeywords
		case "metaphor":
			keywords = lyrics.MetaphorKeywords
		}
	}

	results, err := s.RhymeNet.FigurativeSearch(c.Request.Context(), keywords, req.Filters)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

type RankRequest struct {
	Lines          []llm.CandidateLine `json:"lines"`
	DesiredMeaning string              `json:"desired_meaning"`
}

func (s *Server) RankFigurative(c *gin.Context) {
	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ranked, err := s.RhymeNet.RankByMeaning(c.Request.Context(), req.DesiredMeaning, req.Lines)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranked_lines": ranked, "total_analyzed": len(req.Lines)})
}

// Lyrics serves GET /songs/:id/lyrics?highlight=word,word
func (s *Server) Lyrics(c *gin.Context) {
	var highlight []string
	if raw := c.Query("highlight"); raw != "" {
		highlight = strings.Split(raw, ",")
	}

	view, err := s.RhymeNet.Lyrics(c.Request.Context(), c.Param("id"), highlight)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) Facets(c *gin.Context) {
	facets, err := s.RhymeNet.Facets(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, facets)
}
