package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/inkwell/internal/domain"
)

// MaxCommentLength bounds a comment body, in characters.
const MaxCommentLength = 5000

// CommentService handles posting and reading article comments.
type CommentService struct {
	comments domain.CommentRepository
	articles domain.ArticleRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(comments domain.CommentRepository, articles domain.ArticleRepository) *CommentService {
	return &CommentService{comments: comments, articles: articles}
}

// Post adds a comment by author to a published article. parentID, when
// set, must name a comment on the same article.
func (s *CommentService) Post(ctx context.Context, author *domain.User, articleID string, parentID *int64, body string) (*domain.Comment, error) {
	if author == nil {
		return nil, domain.ErrUnauthorized
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return nil, fmt.Errorf("%w: comment must be at most %d characters", domain.ErrInvalidInput, MaxCommentLength)
	}

	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article.Status != domain.ArticleStatusPublished {
		return nil, fmt.Errorf("%w: comments are closed on drafts", domain.ErrForbidden)
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent comment not found", domain.ErrInvalidInput)
			}
			return nil, fmt.Errorf("get parent comment: %w", err)
		}
		if parent.ArticleID != articleID {
			return nil, fmt.Errorf("%w: parent comment belongs to another article", domain.ErrInvalidInput)
		}
	}

	comment := &domain.Comment{
		ArticleID:  articleID,
		ParentID:   parentID,
		AuthorID:   author.ID,
		AuthorName: author.Byline(),
		Body:       body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// ListTopLevel returns the comments of an article that are not replies.
func (s *CommentService) ListTopLevel(ctx context.Context, articleID string) ([]domain.Comment, error) {
	return s.comments.ListTopLevel(ctx, articleID)
}

// ListReplies returns the direct replies to a comment.
func (s *CommentService) ListReplies(ctx context.Context, parentID int64) ([]domain.Comment, error) {
	return s.comments.ListReplies(ctx, parentID)
}

// Thread returns the comments of an article as a tree, oldest first at
// every level. Replies whose parent is missing are dropped.
func (s *CommentService) Thread(ctx context.Context, articleID string) ([]domain.Comment, error) {
	flat, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return BuildThread(flat), nil
}

// BuildThread assembles flat comments into a tree without recursion on
// the storage side. Input order is preserved among siblings.
func BuildThread(flat []domain.Comment) []domain.Comment {
	children := make(map[int64][]int, len(flat))
	var roots []int
	for i, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, i)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], i)
	}

	var build func(i int) domain.Comment
	build = func(i int) domain.Comment {
		c := flat[i]
		c.Replies = nil
		for _, j := range children[c.ID] {
			c.Replies = append(c.Replies, build(j))
		}
		return c
	}

	tree := make([]domain.Comment, 0, len(roots))
	for _, i := range roots {
		tree = append(tree, build(i))
	}
	return tree
}
