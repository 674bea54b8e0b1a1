package model

import "time"

// Post is the canonical record owned by the post repository.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"user_id"`
	Content   string    `json:"content"`
	ImageRef  string    `json:"img_url"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostPatch holds the mutable fields of a post. Nil fields are left as is.
type PostPatch struct {
	Content *string   `json:"content" binding:"omitempty,notblank"`
	Tags    *[]string `json:"tags"`
}

// Empty reports whether the patch changes nothing.
func (p PostPatch) Empty() bool {
	return p.Content == nil && p.Tags == nil
}

// Comment is a comment owned by the comment service.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Like is a like owned by the like service.
type Like struct {
	ID        string    `json:"id,omitempty"`
	PostID    string    `json:"post_id,omitempty"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Aggregated field names used in FieldFailure.
const (
	FieldAuthor   = "author"
	FieldComments = "comments"
	FieldLikes    = "likes"
)

// FieldFailure marks a field of an AggregatedPost that could not be resolved.
type FieldFailure struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AggregatedPost is a post enriched with data resolved at request time.
// It is never persisted.
type AggregatedPost struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"user_id"`
	Content   string    `json:"content"`
	ImageRef  string    `json:"img_url"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author         *User          `json:"user"`
	Comments       []Comment      `json:"comments"`
	Likes          []Like         `json:"likes"`
	SignedImageURL string         `json:"signed_img_url,omitempty"`
	Unavailable    []FieldFailure `json:"unavailable,omitempty"`
}

// NewAggregatedPost copies the post's own fields. Collaborator fields start empty.
func NewAggregatedPost(p *Post) *AggregatedPost {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	return &AggregatedPost{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Content:   p.Content,
		ImageRef:  p.ImageRef,
		Tags:      tags,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Degraded reports whether the named field was marked unavailable.
func (a *AggregatedPost) Degraded(field string) bool {
	for _, f := range a.Unavailable {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Feed is a reverse-chronological listing sharing one access credential.
type Feed struct {
	Posts            []*AggregatedPost `json:"posts"`
	AccessCredential string            `json:"sas_token"`
}
