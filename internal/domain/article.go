package domain

import (
	"context"
	"time"
)

// Article statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// Article is a stored blog article. Content is the reconciled HTML body.
type Article struct {
	ID               string
	AuthorID         int64
	AuthorName       string
	Title            string
	Content          string
	ShortDescription string
	Status           string
	Categories       []string
	Tags             []string
	ImageURL         string // Cover image, empty when the article has none
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PublishedAt      *time.Time
}

// ArticleInput is the create/update payload exchanged with the article
// endpoints. ImageURL is null when there is no cover image.
type ArticleInput struct {
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	ShortDescription string   `json:"shortDescription"`
	Status           string   `json:"status"`
	Categories       []string `json:"categories"`
	Tags             []string `json:"tags"`
	AuthorName       string   `json:"authorName"`
	ImageURL         *string  `json:"imageUrl"`
}

// ArticleFilter narrows public article listings. At most one of Category
// and Tag is expected; Limit <= 0 means no limit.
type ArticleFilter struct {
	Category string
	Tag      string
	Limit    int
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *Article) error
	GetByID(ctx context.Context, id string) (*Article, error)
	Update(ctx context.Context, article *Article) error
	Delete(ctx context.Context, id string) error
	ListByAuthor(ctx context.Context, authorID int64) ([]Article, error)
	ListPublished(ctx context.Context, filter ArticleFilter) ([]Article, error)
}
