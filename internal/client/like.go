package client

import (
	"context"

	"github.com/Leye5555/Insta-ulster-posts/internal/model"
)

// LikeClient lists the likes of a post.
type LikeClient struct {
	base
}

func NewLikeClient(opts Options) *LikeClient {
	return &LikeClient{base: newBase("like", opts)}
}

// Fetch forwards whatever token it is given.
func (c *LikeClient) Fetch(ctx context.Context, postID, token string) ([]model.Like, error) {
	var payload struct {
		Likes []model.Like `json:"likes"`
	}
	if err := c.getJSON(ctx, "/v1/likes/"+escape(postID), token, &payload); err != nil {
		return nil, err
	}
	if payload.Likes == nil {
		payload.Likes = []model.Like{}
	}
	return payload.Likes, nil
}
