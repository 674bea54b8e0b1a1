package client

import (
	"context"

	"github.com/Leye5555/Insta-ulster-posts/internal/model"
)

// UserClient resolves author snapshots from the user service.
type UserClient struct {
	base
}

func NewUserClient(opts Options) *UserClient {
	return &UserClient{base: newBase("user", opts)}
}

// Fetch never sends an unauthenticated request.
func (c *UserClient) Fetch(ctx context.Context, userID, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrAuthRequired
	}
	var user model.User
	if err := c.getJSON(ctx, "/v1/users/"+escape(userID), token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
