package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/Leye5555/Insta-ulster-posts/internal/client"
	"github.com/Leye5555/Insta-ulster-posts/internal/credential"
	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/model"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UserFetcher resolves a post author.
type UserFetcher interface {
	Fetch(ctx context.Context, userID, token string) (*model.User, error)
}

// CommentFetcher lists the comments of a post.
type CommentFetcher interface {
	Fetch(ctx context.Context, postID, token string) ([]model.Comment, error)
}

// LikeFetcher lists the likes of a post.
type LikeFetcher interface {
	Fetch(ctx context.Context, postID, token string) ([]model.Like, error)
}

// CredentialIssuer mints and checks blob access credentials.
type CredentialIssuer interface {
	Issue() (credential.Credential, error)
	Validate(token string) bool
}

const defaultMaxConcurrency = 8

// Aggregator composes posts with data owned by the collaborator services.
// Every call fans out afresh; nothing is cached.
type Aggregator struct {
	users          UserFetcher
	comments       CommentFetcher
	likes          LikeFetcher
	issuer         CredentialIssuer
	maxConcurrency int
}

func NewAggregator(users UserFetcher, comments CommentFetcher, likes LikeFetcher, issuer CredentialIssuer, maxConcurrency int) *Aggregator {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	return &Aggregator{
		users:          users,
		comments:       comments,
		likes:          likes,
		issuer:         issuer,
		maxConcurrency: maxConcurrency,
	}
}

// AggregateOne enriches a single post and signs its image URL with a fresh
// credential. A failing collaborator degrades its field only. A missing
// caller token and a failed credential mint are fatal.
func (a *Aggregator) AggregateOne(ctx context.Context, post *model.Post, token string) (*model.AggregatedPost, error) {
	if token == "" {
		return nil, errors.New(errors.ErrPrecondition, "caller credential is required")
	}
	if post == nil {
		return nil, errors.New(errors.ErrPrecondition, "post is required")
	}

	var (
		g       errgroup.Group
		out     *model.AggregatedPost
		cred    credential.Credential
		credErr error
	)
	g.Go(func() error {
		out = a.resolve(ctx, post, token)
		return nil
	})
	g.Go(func() error {
		cred, credErr = a.issuer.Issue()
		return nil
	})
	_ = g.Wait()

	if credErr != nil {
		util.Logger.Error("failed to issue access credential", zap.Error(credErr), zap.String("post_id", post.ID))
		return nil, errors.Wrap(errors.ErrCredential, "failed to sign image url", credErr)
	}
	out.SignedImageURL = cred.Sign(post.ImageRef)
	return out, nil
}

// AggregateMany enriches posts concurrently, at most maxConcurrency at a
// time, and returns them newest first: the reverse of the input's creation
// order, whatever order the fetches complete in. One credential is minted
// for the whole feed and no per-post URL is signed.
func (a *Aggregator) AggregateMany(ctx context.Context, posts []*model.Post, token string) (*model.Feed, error) {
	if token == "" {
		return nil, errors.New(errors.ErrPrecondition, "caller credential is required")
	}
	if err := checkPosts(posts); err != nil {
		return nil, err
	}

	// Minting first means a signing failure costs no upstream calls.
	cred, err := a.issuer.Issue()
	if err != nil {
		util.Logger.Error("failed to issue access credential", zap.Error(err))
		return nil, errors.Wrap(errors.ErrCredential, "failed to issue access credential", err)
	}

	results := make([]*model.AggregatedPost, len(posts))
	var g errgroup.Group
	g.SetLimit(a.maxConcurrency)
	for i, post := range posts {
		g.Go(func() error {
			results[len(posts)-1-i] = a.resolve(ctx, post, token)
			return nil
		})
	}
	_ = g.Wait()

	return &model.Feed{Posts: results, AccessCredential: cred.String()}, nil
}

func checkPosts(posts []*model.Post) error {
	for i, post := range posts {
		if post == nil {
			return errors.New(errors.ErrPrecondition, fmt.Sprintf("post %d is nil", i))
		}
	}
	return nil
}

// WithComments copies post and attaches only its comments.
func (a *Aggregator) WithComments(ctx context.Context, post *model.Post, token string) *model.AggregatedPost {
	out := model.NewAggregatedPost(post)
	comments, err := a.comments.Fetch(ctx, post.ID, token)
	if err != nil {
		out.Unavailable = append(out.Unavailable, degrade(post.ID, model.FieldComments, err))
		return out
	}
	out.Comments = comments
	return out
}

// resolve runs the author, comments and likes lookups concurrently. Each
// branch writes only its own field; failures are collected after Wait.
func (a *Aggregator) resolve(ctx context.Context, post *model.Post, token string) *model.AggregatedPost {
	out := model.NewAggregatedPost(post)

	var g errgroup.Group
	var authorErr, commentsErr, likesErr error
	g.Go(func() error {
		author, err := a.users.Fetch(ctx, post.AuthorID, token)
		if err != nil {
			authorErr = err
			return nil
		}
		out.Author = author
		return nil
	})
	g.Go(func() error {
		comments, err := a.comments.Fetch(ctx, post.ID, token)
		if err != nil {
			commentsErr = err
			return nil
		}
		out.Comments = comments
		return nil
	})
	g.Go(func() error {
		likes, err := a.likes.Fetch(ctx, post.ID, token)
		if err != nil {
			likesErr = err
			return nil
		}
		out.Likes = likes
		return nil
	})
	_ = g.Wait()

	if authorErr != nil {
		out.Unavailable = append(out.Unavailable, degrade(post.ID, model.FieldAuthor, authorErr))
	}
	if commentsErr != nil {
		out.Unavailable = append(out.Unavailable, degrade(post.ID, model.FieldComments, commentsErr))
	}
	if likesErr != nil {
		out.Unavailable = append(out.Unavailable, degrade(post.ID, model.FieldLikes, likesErr))
	}
	return out
}

// degrade logs a collaborator failure and turns it into a field marker.
func degrade(postID, field string, err error) model.FieldFailure {
	kind := errors.KindUpstreamUnavailable
	if stderrors.Is(err, client.ErrAuthRequired) {
		kind = errors.KindPrecondition
	}
	util.Logger.Warn("collaborator field unavailable",
		zap.String("post_id", postID),
		zap.String("field", field),
		zap.String("kind", string(kind)),
		zap.Error(err))
	return model.FieldFailure{
		Field:   field,
		Kind:    string(kind),
		Message: fmt.Sprintf("%s unavailable: %v", field, err),
	}
}
