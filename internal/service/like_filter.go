package service

import (
	"context"

	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/model"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LikeFilter selects the posts a user has liked. It only fetches likes;
// full aggregation of the survivors is left to the caller.
type LikeFilter struct {
	likes          LikeFetcher
	maxConcurrency int
}

func NewLikeFilter(likes LikeFetcher, maxConcurrency int) *LikeFilter {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	return &LikeFilter{likes: likes, maxConcurrency: maxConcurrency}
}

// FilterPostsLikedBy returns, in input order, the posts whose current like
// list has an entry from userID. A post whose likes cannot be fetched is
// left out since its membership cannot be shown.
func (f *LikeFilter) FilterPostsLikedBy(ctx context.Context, userID string, posts []*model.Post, token string) ([]*model.Post, error) {
	if userID == "" {
		return nil, errors.New(errors.ErrPrecondition, "user id is required")
	}
	if err := checkPosts(posts); err != nil {
		return nil, err
	}

	keep := make([]bool, len(posts))
	var g errgroup.Group
	g.SetLimit(f.maxConcurrency)
	for i, post := range posts {
		g.Go(func() error {
			likes, err := f.likes.Fetch(ctx, post.ID, token)
			if err != nil {
				util.Logger.Warn("excluding post whose likes are unavailable",
					zap.String("post_id", post.ID),
					zap.Error(err))
				return nil
			}
			if len(likes) == 0 {
				return nil
			}
			keep[i] = likedBy(likes, userID)
			return nil
		})
	}
	_ = g.Wait()

	liked := []*model.Post{}
	for i, post := range posts {
		if keep[i] {
			liked = append(liked, post)
		}
	}
	return liked, nil
}

func likedBy(likes []model.Like, userID string) bool {
	for _, like := range likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}
