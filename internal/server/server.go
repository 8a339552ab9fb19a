package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/agenthands/rhymenet/internal/config"
	"github.com/agenthands/rhymenet/internal/core"
	"github.com/agenthands/rhymenet/internal/logger"
	"github.com/agenthands/rhymenet/internal/metrics"
)

// SessionHeader identifies the client whose network searches supersede each other.
const SessionHeader = "X-Session-ID"

// BreakerState reports the store circuit breaker for health checks.
type BreakerState interface {
	State() gobreaker.State
}

type Server struct {
	RhymeNet *core.RhymeNet
	Metrics  *metrics.Collector
	Breaker  BreakerState

	mode   string
	logger *zap.Logger

	mu       sync.Mutex
	sessions *expirable.LRU[string, *core.Session]
	flight   singleflight.Group
}

// NewServer wraps net in an HTTP API. collector and breaker may be nil.
// Sessions beyond cfg.MaxSessions evict the least recently searched one,
// and a session idle for cfg.SessionTTLSeconds is forgotten.
func NewServer(net *core.RhymeNet, collector *metrics.Collector, breaker BreakerState, cfg config.ServerConfig, log *zap.Logger) *Server {
	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	size := cfg.MaxSessions
	if size < 1 {
		size = config.Default().Server.MaxSessions
	}
	ttl := time.Duration(cfg.SessionTTLSeconds) * time.Second

	return &Server{
		RhymeNet: net,
		Metrics:  collector,
		Breaker:  breaker,
		mode:     mode,
		logger:   logger.OrNop(log),
		sessions: expirable.NewLRU[string, *core.Session](size, nil, ttl),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	gin.SetMode(s.mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(sessionMiddleware())

	r.GET("/health", s.Health)
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	r.POST("/network", s.Network)
	r.POST("/network/records", s.Records)
	r.POST("/sort", s.Sort)

	r.POST("/simple", s.SimpleSearch)
	r.POST("/figurative", s.FigurativeSearch)
	r.POST("/figurative/rank", s.RankFigurative)
	r.GET("/songs/:id/lyrics", s.Lyrics)
	r.GET("/facets", s.Facets)

	r.POST("/lines/next", s.NextLine)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.Metrics.RecordRequest(c.Request.Method, route, strconv.Itoa(status))
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)))
	}
}

func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(SessionHeader, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// session returns the caller's session, creating it on first use. Every
// call renews the session's TTL.
func (s *Server) session(c *gin.Context) *core.Session {
	id := c.GetString(SessionHeader)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions.Get(id)
	if !ok {
		sess = core.NewSession()
	}
	s.sessions.Add(id, sess)
	return sess
}

// lookup returns the caller's session without creating one.
func (s *Server) lookup(c *gin.Context) (*core.Session, bool) {
	return s.sessions.Get(c.GetString(SessionHeader))
}

// Health reports the breaker state; an open breaker is unhealthy.
func (s *Server) Health(c *gin.Context) {
	store := "unmonitored"
	code := http.StatusOK
	status := "healthy"

	if s.Breaker != nil {
		state := s.Breaker.State()
		store = state.String()
		if state == gobreaker.StateOpen {
			code = http.StatusServiceUnavailable
			status = "degraded"
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"store":     store,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
