package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

const (
	tokenKey        = "token"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-Id"

	authHeaderMessage = "authorization header must be of the form 'Bearer <token>'"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog logs one line per request. Bodies and headers are never logged.
func accessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start).String(),
			"request_id", c.GetString(requestIDKey),
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(ctx, "request completed", args...)
		case status >= http.StatusBadRequest:
			logger.Warn(ctx, "request completed", args...)
		default:
			logger.Info(ctx, "request completed", args...)
		}
	}
}

func recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error(c.Request.Context(), "panic recovered", "path", c.Request.URL.Path, "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{Error: common.Message(common.ErrorInternal)})
	})
}

// bearerAuth requires "Authorization: Bearer <token>" and stores the token
// for the handler. The token itself is checked by the service.
func bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.ErrorResponse{Error: authHeaderMessage})
			return
		}

		c.Set(tokenKey, token)
		c.Next()
	}
}
