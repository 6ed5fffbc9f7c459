package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dietrec/backend/internal/metrics"
)

// Metrics records request counts, latency and in-flight requests. Requests
// that match no route are grouped under one label to bound cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.APIActiveRequests.Inc()
		defer metrics.APIActiveRequests.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
