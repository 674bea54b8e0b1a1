package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// AuthMiddleware validates the bearer token and stores the caller's id as
// "user_id" and the raw token as "token" for forwarding to collaborators.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		util.Logger.Debug("authenticating request",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method))

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "authentication required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "invalid authorization format"))
			c.Abort()
			return
		}

		userID, err := util.ValidateToken(jwtSecret, parts[1])
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("token", parts[1])

		select {
		case <-ctx.Done():
			errors.HandleError(c, errors.New(errors.ErrTimeout, "request timed out"))
			c.Abort()
			return
		default:
			c.Next()
		}
	}
}
