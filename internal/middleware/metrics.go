package middleware

import (
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route template, so MRNs and
// IDs in paths do not explode label cardinality.
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.InFlightGauge.Inc()
		defer m.InFlightGauge.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
