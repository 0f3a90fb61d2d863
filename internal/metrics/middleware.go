package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is where the Prometheus handler is mounted.
const MetricsPath = "/metrics"

// Middleware returns a Gin middleware that records HTTP metrics.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics endpoint itself
		if c.Request.URL.Path == MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		m.RecordHTTPRequest(normalizeEndpoint(c.FullPath()), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// Handler returns a Gin handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// normalizeEndpoint keeps label cardinality bounded.
// Gin's FullPath() already uses parameter placeholders like :id; unmatched
// routes have an empty path.
func normalizeEndpoint(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}
