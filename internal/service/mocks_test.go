package service

import (
	"context"
	"time"

	"github.com/Leye5555/Insta-ulster-posts/internal/credential"
	"github.com/Leye5555/Insta-ulster-posts/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockPostRepository mocks interfaces.PostRepository.
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) FindAll(ctx context.Context) ([]*model.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepository) UpdateByID(ctx context.Context, id, ownerID string, patch model.PostPatch) (*model.Post, error) {
	args := m.Called(ctx, id, ownerID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) DeleteByID(ctx context.Context, id, ownerID string) (*model.Post, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

type MockUserFetcher struct {
	mock.Mock
}

func (m *MockUserFetcher) Fetch(ctx context.Context, userID, token string) (*model.User, error) {
	args := m.Called(ctx, userID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockCommentFetcher struct {
	mock.Mock
}

func (m *MockCommentFetcher) Fetch(ctx context.Context, postID, token string) ([]model.Comment, error) {
	args := m.Called(ctx, postID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

type MockLikeFetcher struct {
	mock.Mock
}

func (m *MockLikeFetcher) Fetch(ctx context.Context, postID, token string) ([]model.Like, error) {
	args := m.Called(ctx, postID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Like), args.Error(1)
}

type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Issue() (credential.Credential, error) {
	args := m.Called()
	return args.Get(0).(credential.Credential), args.Error(1)
}

func (m *MockIssuer) Validate(token string) bool {
	args := m.Called(token)
	return args.Bool(0)
}

var _ CredentialIssuer = (*credential.Issuer)(nil)

func newIssuer() *credential.Issuer {
	issuer, err := credential.NewIssuer("test-secret", "posts", time.Hour)
	if err != nil {
		panic(err)
	}
	return issuer
}

func testPost(id, author string, created time.Time) *model.Post {
	return &model.Post{
		ID:        id,
		AuthorID:  author,
		Content:   "content of " + id,
		ImageRef:  "http://localhost:8001/uploads/posts/" + id + ".png",
		Tags:      []string{},
		CreatedAt: created,
		UpdatedAt: created,
	}
}
