package domain

import (
	"context"
	"time"
)

// Comment is a reader comment on an article. Replies point at their parent;
// storage is flat and threads are assembled on read.
type Comment struct {
	ID         int64
	ArticleID  string
	ParentID   *int64
	AuthorID   int64
	AuthorName string
	Body       string
	CreatedAt  time.Time

	Replies []Comment // Filled when a thread is assembled
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListTopLevel(ctx context.Context, articleID string) ([]Comment, error)
	ListReplies(ctx context.Context, parentID int64) ([]Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]Comment, error)
}
