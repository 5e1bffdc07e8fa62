package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unihelp-api/internal/service"
)

// UnmatchedRoute labels requests that hit no registered route, keeping label cardinality bounded.
const UnmatchedRoute = "unmatched"

// Metrics records the request histogram by route pattern. Scrapes of skipPaths are not observed.
func Metrics(metricsSvc *service.MetricsService, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := skip[route]; ok {
			return
		}
		if route == "" {
			route = UnmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
