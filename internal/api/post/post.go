package post

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/model"
	"github.com/Leye5555/Insta-ulster-posts/internal/service"
	"github.com/Leye5555/Insta-ulster-posts/internal/storage"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxUploadSize      = 32 << 20
	blobCleanupTimeout = 10 * time.Second
)

type PostHandler struct {
	postService service.PostServiceInterface
	storage     storage.BlobStore
	blobPrefix  string
}

// NewPostHandler stores uploaded images under blobPrefix, the namespace
// access credentials are scoped to.
func NewPostHandler(postService service.PostServiceInterface, storage storage.BlobStore, blobPrefix string) *PostHandler {
	return &PostHandler{
		postService: postService,
		storage:     storage,
		blobPrefix:  blobPrefix,
	}
}

// caller returns the authenticated user and the token forwarded downstream.
func caller(c *gin.Context) (userID, token string) {
	return c.GetString("user_id"), c.GetString("token")
}

func (h *PostHandler) ListPosts(c *gin.Context) {
	_, token := caller(c)
	feed, err := h.postService.ListPosts(c.Request.Context(), token)
	if err != nil {
		util.Logger.Error("failed to list posts", zap.Error(err))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *PostHandler) ListLikedPosts(c *gin.Context) {
	userID, token := caller(c)
	feed, err := h.postService.ListLikedBy(c.Request.Context(), userID, token)
	if err != nil {
		util.Logger.Error("failed to list liked posts", zap.Error(err), zap.String("user_id", userID))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	_, token := caller(c)
	id := c.Param("id")

	post, err := h.postService.GetPost(c.Request.Context(), id, token)
	if err != nil {
		util.Logger.Warn("failed to get post", zap.Error(err), zap.String("post_id", id))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"post":   post,
		"author": post.Author,
	})
}

// CreatePost takes multipart form fields content, tags (comma separated)
// and the post_image file.
func (h *PostHandler) CreatePost(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		util.Logger.Warn("could not parse form data", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "could not parse form data", err))
		return
	}

	userID, _ := caller(c)
	post := &model.Post{
		AuthorID: userID,
		Content:  c.PostForm("content"),
		Tags:     util.ParseTags(c.PostForm("tags")),
	}

	file, err := c.FormFile("post_image")
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrPrecondition, "Image is required"))
		return
	}

	// Check everything but the image ref before paying for the upload.
	post.ImageRef = "pending"
	if err := service.ValidateNewPost(post); err != nil {
		errors.HandleError(c, err)
		return
	}

	blobPath := path.Join(h.blobPrefix, util.GenerateUniqueFilename(file.Filename))
	imageURL, err := h.storage.UploadFile(c.Request.Context(), file, blobPath)
	if err != nil {
		util.Logger.Error("image upload failed", zap.Error(err), zap.String("path", blobPath))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "image upload failed", err))
		return
	}
	post.ImageRef = imageURL

	if err := h.postService.CreatePost(c.Request.Context(), post); err != nil {
		util.Logger.Error("failed to create post", zap.Error(err))
		h.discardBlob(blobPath)
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// discardBlob removes an image whose post was never stored. It runs on a
// fresh context so a cancelled request still cleans up.
func (h *PostHandler) discardBlob(blobPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), blobCleanupTimeout)
	defer cancel()
	if err := h.storage.Delete(ctx, blobPath); err != nil {
		util.Logger.Error("orphaned image left in storage", zap.Error(err), zap.String("path", blobPath))
	}
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, token := caller(c)
	id := c.Param("id")

	var patch model.PostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		util.Logger.Warn("invalid post data", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid post data", err))
		return
	}
	if patch.Empty() {
		errors.HandleError(c, errors.New(errors.ErrValidation, "nothing to update"))
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), id, userID, patch, token)
	if err != nil {
		util.Logger.Warn("failed to update post", zap.Error(err), zap.String("post_id", id))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, _ := caller(c)
	id := c.Param("id")

	post, err := h.postService.DeletePost(c.Request.Context(), id, userID)
	if err != nil {
		util.Logger.Warn("failed to delete post", zap.Error(err), zap.String("post_id", id))
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}
