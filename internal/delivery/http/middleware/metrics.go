package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tracklin/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route, so that
// arbitrary paths can't blow up the label cardinality.
const unmatchedRoute = "unmatched"

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method

		metrics.HTTPRequests.
			WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).
			Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(route, method).
			Observe(time.Since(start).Seconds())
	}
}
