package interfaces

import (
	"context"

	"github.com/Leye5555/Insta-ulster-posts/internal/model"
)

// PostRepository owns the canonical post records.
//
// FindAll returns posts in creation order, oldest first. UpdateByID and
// DeleteByID only touch a post whose author is ownerID; a missing post and
// a post owned by someone else both yield errors.ErrPostNotFound.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id string) (*model.Post, error)
	FindAll(ctx context.Context) ([]*model.Post, error)
	UpdateByID(ctx context.Context, id, ownerID string, patch model.PostPatch) (*model.Post, error)
	DeleteByID(ctx context.Context, id, ownerID string) (*model.Post, error)
}
