package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"vaultflow/internal/chain"
	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/logger"
)

// ErrorHandler renders the last error attached to the context as
// {"error":{"code","message"}}. Handlers that already wrote a body are left
// alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := resolveError(err)

		fields := []interface{}{
			"code", appErr.Code,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", c.GetString(requestIDKey),
		}
		switch {
		case appErr.StatusCode >= 500:
			logger.Named("http").Errorw("request failed", append(fields, "error", err.Error())...)
		case appErr.Internal != nil:
			logger.Named("http").Warnw("request rejected", append(fields, "internal", appErr.Internal.Error())...)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}

// resolveError maps err onto the AppError the client sees. Chain errors that
// reach the router without going through a service translator still come
// out as a gateway failure rather than a bare 500.
func resolveError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, chain.ErrGateway):
		return apperrors.Wrap(apperrors.ErrGatewayUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrWaitTimeout, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
