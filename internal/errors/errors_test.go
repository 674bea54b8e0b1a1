package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading post: %w", New(ErrPostNotFound, "post not found"))
	assert.Equal(t, ErrPostNotFound, CodeOf(err))
	assert.True(t, Is(err, ErrPostNotFound))
	assert.Equal(t, ErrInternal, CodeOf(fmt.Errorf("plain")))
	assert.False(t, Is(nil, ErrInternal))
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindPrecondition, ErrPrecondition.Kind())
	assert.Equal(t, KindUpstreamUnavailable, ErrTimeout.Kind())
	assert.Equal(t, KindRepository, ErrPostNotFound.Kind())
	assert.Equal(t, KindCredential, ErrCredential.Kind())
	assert.Equal(t, KindInternal, ErrorCode(9999).Kind())
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleError(c, Wrap(ErrPostNotFound, "post not found", fmt.Errorf("no rows")))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrPostNotFound, resp.Code)
	assert.Equal(t, KindRepository, resp.Kind)
	assert.Equal(t, "no rows", resp.Error)
	assert.Len(t, c.Errors, 1)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	HandleError(c, fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
