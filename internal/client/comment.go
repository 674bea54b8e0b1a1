package client

import (
	"context"

	"github.com/Leye5555/Insta-ulster-posts/internal/model"
)

// CommentClient lists the comments of a post.
type CommentClient struct {
	base
}

func NewCommentClient(opts Options) *CommentClient {
	return &CommentClient{base: newBase("comment", opts)}
}

// Fetch forwards whatever token it is given.
func (c *CommentClient) Fetch(ctx context.Context, postID, token string) ([]model.Comment, error) {
	var payload struct {
		Comments []model.Comment `json:"comments"`
	}
	if err := c.getJSON(ctx, "/v1/comments/"+escape(postID), token, &payload); err != nil {
		return nil, err
	}
	if payload.Comments == nil {
		payload.Comments = []model.Comment{}
	}
	return payload.Comments, nil
}
