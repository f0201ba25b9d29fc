package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/equipskill/equipskill-dashboard/pkg/logger"
	"github.com/equipskill/equipskill-dashboard/pkg/metrics"
)

// quietPaths are probed constantly and only logged on failure.
var quietPaths = map[string]bool{
	"/api/healthcheck": true,
	"/api/metrics":     true,
}

var sensitiveQueryParams = map[string]bool{
	"token": true, "access_token": true, "secret": true, "key": true, "api_key": true,
}

// ObservabilityMiddleware records request metrics and logs every request.
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		// route template, not the raw path, keeps label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		duration := metrics.MeasureDuration(start)
		status := c.Writer.Status()
		statusStr := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, route, statusStr).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, statusStr).Inc()

		if quietPaths[route] && status < 400 {
			return
		}

		fields := []zap.Field{
			zap.String("route", route),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if userID := UserID(c); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		if status >= 400 {
			for _, p := range c.Params {
				fields = append(fields, zap.String("param_"+p.Key, p.Value))
			}
			if query := sanitizedQuery(c); len(query) > 0 {
				fields = append(fields, zap.Any("query_params", query))
			}
			if len(c.Errors) > 0 {
				fields = append(fields, zap.String("error", c.Errors.String()))
			}
		}

		logger.LogHTTPRequest(c.Request.Context(), method, c.Request.URL.Path, status, duration, fields...)
	}
}

func sanitizedQuery(c *gin.Context) map[string]string {
	query := c.Request.URL.Query()
	out := make(map[string]string, len(query))
	for k, v := range query {
		if !sensitiveQueryParams[strings.ToLower(k)] && len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
