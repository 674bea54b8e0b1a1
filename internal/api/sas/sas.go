package sas

import (
	"net/http"

	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/service"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SASHandler exposes the blob access credential endpoints.
type SASHandler struct {
	postService service.PostServiceInterface
}

func NewSASHandler(postService service.PostServiceInterface) *SASHandler {
	return &SASHandler{postService: postService}
}

func (h *SASHandler) Issue(c *gin.Context) {
	cred, err := h.postService.IssueCredential()
	if err != nil {
		util.Logger.Error("failed to issue credential", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"credential": cred.Token,
		"expires_at": cred.ExpiresAt,
	})
}

func (h *SASHandler) Verify(c *gin.Context) {
	var req struct {
		SASToken string `json:"sas_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "sas_token is required", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"isValid": h.postService.VerifyCredential(req.SASToken)})
}
