package service

import (
	"context"
	"strings"

	"github.com/Leye5555/Insta-ulster-posts/internal/credential"
	"github.com/Leye5555/Insta-ulster-posts/internal/errors"
	"github.com/Leye5555/Insta-ulster-posts/internal/model"
	"github.com/Leye5555/Insta-ulster-posts/internal/repository/interfaces"
	"github.com/Leye5555/Insta-ulster-posts/internal/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostServiceInterface is what the HTTP handlers depend on.
type PostServiceInterface interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id, token string) (*model.AggregatedPost, error)
	ListPosts(ctx context.Context, token string) (*model.Feed, error)
	ListLikedBy(ctx context.Context, userID, token string) (*model.Feed, error)
	UpdatePost(ctx context.Context, id, ownerID string, patch model.PostPatch, token string) (*model.AggregatedPost, error)
	DeletePost(ctx context.Context, id, ownerID string) (*model.Post, error)
	IssueCredential() (credential.Credential, error)
	VerifyCredential(token string) bool
}

// PostService handles post reads and writes. Repository errors are returned
// as is; collaborator failures are absorbed by the aggregator.
type PostService struct {
	repo       interfaces.PostRepository
	aggregator *Aggregator
	likeFilter *LikeFilter
	issuer     CredentialIssuer
}

var _ PostServiceInterface = (*PostService)(nil)

func NewPostService(repo interfaces.PostRepository, aggregator *Aggregator, likeFilter *LikeFilter, issuer CredentialIssuer) *PostService {
	return &PostService{
		repo:       repo,
		aggregator: aggregator,
		likeFilter: likeFilter,
		issuer:     issuer,
	}
}

// ValidateNewPost checks the fields required at creation.
func ValidateNewPost(post *model.Post) error {
	if post == nil {
		return errors.New(errors.ErrPrecondition, "post is required")
	}
	if post.AuthorID == "" {
		return errors.New(errors.ErrPrecondition, "author is required")
	}
	if strings.TrimSpace(post.Content) == "" {
		return errors.New(errors.ErrPrecondition, "Content is required")
	}
	if post.ImageRef == "" {
		return errors.New(errors.ErrPrecondition, "Image is required")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, post *model.Post) error {
	if err := ValidateNewPost(post); err != nil {
		return err
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return s.repo.Create(ctx, post)
}

func (s *PostService) GetPost(ctx context.Context, id, token string) (*model.AggregatedPost, error) {
	if token == "" {
		return nil, errors.New(errors.ErrPrecondition, "caller credential is required")
	}
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.aggregator.AggregateOne(ctx, post, token)
}

func (s *PostService) ListPosts(ctx context.Context, token string) (*model.Feed, error) {
	if token == "" {
		return nil, errors.New(errors.ErrPrecondition, "caller credential is required")
	}
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.aggregator.AggregateMany(ctx, posts, token)
}

// ListLikedBy filters on likes first and aggregates only the survivors.
func (s *PostService) ListLikedBy(ctx context.Context, userID, token string) (*model.Feed, error) {
	if token == "" {
		return nil, errors.New(errors.ErrPrecondition, "caller credential is required")
	}
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	liked, err := s.likeFilter.FilterPostsLikedBy(ctx, userID, posts, token)
	if err != nil {
		return nil, err
	}
	util.Logger.Debug("filtered liked posts",
		zap.String("user_id", userID),
		zap.Int("candidates", len(posts)),
		zap.Int("liked", len(liked)))
	return s.aggregator.AggregateMany(ctx, liked, token)
}

// UpdatePost applies patch if ownerID authored the post and returns the
// result with its comments attached.
func (s *PostService) UpdatePost(ctx context.Context, id, ownerID string, patch model.PostPatch, token string) (*model.AggregatedPost, error) {
	if ownerID == "" {
		return nil, errors.New(errors.ErrPrecondition, "owner is required")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, errors.New(errors.ErrPrecondition, "Content is required")
	}
	if patch.Tags != nil && *patch.Tags == nil {
		empty := []string{}
		patch.Tags = &empty
	}
	post, err := s.repo.UpdateByID(ctx, id, ownerID, patch)
	if err != nil {
		return nil, err
	}
	return s.aggregator.WithComments(ctx, post, token), nil
}

func (s *PostService) DeletePost(ctx context.Context, id, ownerID string) (*model.Post, error) {
	if ownerID == "" {
		return nil, errors.New(errors.ErrPrecondition, "owner is required")
	}
	return s.repo.DeleteByID(ctx, id, ownerID)
}

func (s *PostService) IssueCredential() (credential.Credential, error) {
	cred, err := s.issuer.Issue()
	if err != nil {
		return credential.Credential{}, errors.Wrap(errors.ErrCredential, "failed to issue access credential", err)
	}
	return cred, nil
}

func (s *PostService) VerifyCredential(token string) bool {
	return s.issuer.Validate(token)
}
