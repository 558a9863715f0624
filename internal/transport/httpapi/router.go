// Package httpapi is the Dispatch Protocol: the gin-backed HTTP/JSON
// front door onto the Worker Registry and the Run Engine.
//
// Grounded on the teacher's server.go request-tracing idiom (an
// X-Request-Id stamped on every response) adapted onto gin middleware,
// since the teacher's raw HTTP/1.0 parser has no place in a JSON API
// served over net/http.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/distsched/distsched/internal/registry"
	"github.com/distsched/distsched/internal/runstate"
	"github.com/distsched/distsched/internal/util"
)

// Server bundles the dependencies every handler needs.
type Server struct {
	engine   *runstate.Engine
	registry *registry.Registry
	log      *logrus.Logger
	started  time.Time
}

func NewServer(engine *runstate.Engine, reg *registry.Registry, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{engine: engine, registry: reg, log: log, started: time.Now()}
}

// requestID stamps X-Request-Id on every response, the teacher's
// tracing idiom carried over from the raw HTTP/1.0 server.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := util.NewRequestID()
		c.Writer.Header().Set("X-Request-Id", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("http_request")
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", s.handleRegister)
	r.POST("/heartbeat", s.handleHeartbeat)
	r.GET("/workers", s.handleWorkers)
	r.POST("/start", s.handleStart)
	r.GET("/status", s.handleStatus)
	r.POST("/next", s.handleNext)
	r.POST("/done", s.handleDone)

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "uptime_ms": time.Since(s.started).Milliseconds()})
}
