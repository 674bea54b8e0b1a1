package middleware

import (
	"sync"

	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorMonitor struct {
	errorCounts map[errors.ErrorCode]int
	mu          sync.RWMutex
}

func NewErrorMonitor() *ErrorMonitor {
	return &ErrorMonitor{
		errorCounts: make(map[errors.ErrorCode]int),
	}
}

// RecordError counts err under its code. Errors without a code are counted
// as internal.
func (m *ErrorMonitor) RecordError(err error) {
	code := errors.CodeOf(err)
	m.mu.Lock()
	m.errorCounts[code]++
	m.mu.Unlock()
}

func (m *ErrorMonitor) GetErrorCounts() map[errors.ErrorCode]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[errors.ErrorCode]int, len(m.errorCounts))
	for code, count := range m.errorCounts {
		counts[code] = count
	}
	return counts
}

// CountsHandler reports the error counts keyed by kind and code.
func (m *ErrorMonitor) CountsHandler(c *gin.Context) {
	byKind := map[errors.Kind]map[errors.ErrorCode]int{}
	for code, count := range m.GetErrorCounts() {
		kind := code.Kind()
		if byKind[kind] == nil {
			byKind[kind] = map[errors.ErrorCode]int{}
		}
		byKind[kind][code] = count
	}
	errors.HandleSuccess(c, byKind, "")
}

func ErrorMonitorMiddleware(monitor *ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			monitor.RecordError(e.Err)
			if appErr, ok := errors.As(e.Err); ok {
				util.Logger.Error("request failed",
					zap.Int("error_code", int(appErr.Code)),
					zap.String("kind", string(appErr.Code.Kind())),
					zap.String("error_message", appErr.Message),
					zap.Error(appErr.Err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method))
			}
		}
	}
}
