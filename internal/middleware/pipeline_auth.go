package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vaultflow/internal/logger"
)

// PipelineAuthMiddleware guards operator endpoints (vault sync, phase close)
// with the X-API-Key header. apiKeys may hold a comma-separated list so a key
// can be rotated without downtime; blank entries are ignored.
func PipelineAuthMiddleware(apiKeys string) gin.HandlerFunc {
	var keys [][]byte
	for _, k := range strings.Split(apiKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}
	log := logger.Named("http")

	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": gin.H{"code": "PIPELINE_NOT_CONFIGURED", "message": "Pipeline endpoints are not configured"}})
			return
		}
		presented := []byte(c.GetHeader("X-API-Key"))
		matched := 0
		for _, k := range keys {
			matched |= subtle.ConstantTimeCompare(presented, k)
		}
		if matched != 1 {
			log.Warnw("rejected pipeline request", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": gin.H{"code": "INVALID_API_KEY", "message": "Invalid or missing API key"}})
			return
		}
		c.Next()
	}
}
