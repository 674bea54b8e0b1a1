package middleware

import (
	"net/http"
	"strings"

	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BlobPermitter checks a credential against a blob path.
type BlobPermitter interface {
	Permits(token, path string) bool
}

// BlobAccessMiddleware serves blobs under mountPath only to requests whose
// query string is a valid credential covering the requested path.
func BlobAccessMiddleware(issuer BlobPermitter, mountPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		blobPath := strings.TrimPrefix(c.Request.URL.Path, mountPath)
		if !issuer.Permits(c.Request.URL.RawQuery, blobPath) {
			util.Logger.Warn("blob access denied", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
