// Package server wires the HTTP API: JSON endpoints for lesson generation
// plus the web dashboard routes.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillence/skillence/internal/logger"
	"github.com/skillence/skillence/internal/web"
)

// RouterConfig collects the handlers mounted on the engine.
type RouterConfig struct {
	Lessons *LessonHandler
	Web     *web.Handler
	Log     *logger.Logger
	Mode    string
}

// NewRouter builds the gin engine with recovery and request logging.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Log))

	v1 := router.Group("/v1")
	{
		v1.GET("/health", cfg.Lessons.Health)
		v1.POST("/lessons", cfg.Lessons.Create)
		v1.GET("/lessons/:id", cfg.Lessons.Get)
	}

	if cfg.Web != nil {
		cfg.Web.Register(router)
	}

	return router
}

// requestLogger attaches a request ID and logs one line per request.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		log.Info("http request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
