package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/samvad-hq/wire-scout/internal/metrics"
)

// RouterOptions carries optional collaborators for NewRouter.
type RouterOptions struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter builds the query API.
func NewRouter(store ArticleQuerier, opts RouterOptions) *gin.Engine {
	log := logger.Ensure(opts.Logger)

	router := gin.New()
	router.Use(requestLogger(log, opts.Metrics))
	router.Use(gin.Recovery())

	router.GET("/", Welcome)
	router.GET("/healthz", Health)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	v1 := router.Group("/v1")
	articles := NewArticleHandler(store, log)
	v1.GET("/articles", articles.List)

	return router
}

func requestLogger(log logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		status := c.Writer.Status()
		m.ObserveRequest(route, status, duration)

		log.InfoObj("http request", "http_request", map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": status,
			"client_ip":   c.ClientIP(),
			"duration_ms": duration.Milliseconds(),
		})
	}
}
