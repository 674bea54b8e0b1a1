package sas

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Leye5555/Insta-ulster-posts/internal/credential"
	"github.com/Leye5555/Insta-ulster-posts/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// issuerOnlyService serves the credential calls from a real issuer.
type issuerOnlyService struct {
	service.PostServiceInterface
	issuer *credential.Issuer
}

func (s issuerOnlyService) IssueCredential() (credential.Credential, error) { return s.issuer.Issue() }
func (s issuerOnlyService) VerifyCredential(token string) bool           { return s.issuer.Validate(token) }

func newRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	issuer, err := credential.NewIssuer("secret", "posts", time.Hour)
	require.NoError(t, err)
	h := NewSASHandler(issuerOnlyService{issuer: issuer})

	router := gin.New()
	router.GET("/sas", h.Issue)
	router.POST("/sas/verify", h.Verify)
	return router
}

func TestIssueThenVerify(t *testing.T) {
	router := newRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sas", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var issued struct {
		Credential string `json:"credential"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))
	require.NotEmpty(t, issued.Credential)

	body, _ := json.Marshal(map[string]string{"sas_token": issued.Credential})
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sas/verify", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isValid":true}`, w.Body.String())
}

func TestVerifyForged(t *testing.T) {
	router := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sas/verify", bytes.NewBufferString(`{"sas_token":"sv=1&sig=zz"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isValid":false}`, w.Body.String())
}

func TestVerifyMissingToken(t *testing.T) {
	router := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sas/verify", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
