package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
