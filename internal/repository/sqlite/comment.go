package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
)

// commentRepo implements domain.CommentRepository using SQLite.
type commentRepo struct {
	db *sql.DB
}

const commentColumns = `id, article_id, parent_id, author_id, author_name, body, created_at`

func (r *commentRepo) Create(ctx context.Context, c *domain.Comment) error {
	now := time.Now().UTC()
	var parent sql.NullInt64
	if c.ParentID != nil {
		parent = sql.NullInt64{Int64: *c.ParentID, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (article_id, parent_id, author_id, author_name, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ArticleID, parent, c.AuthorID, c.AuthorName, c.Body, now,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get comment id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (r *commentRepo) ListTopLevel(ctx context.Context, articleID string) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE article_id = ? AND parent_id IS NULL ORDER BY created_at, id`,
		articleID)
}

func (r *commentRepo) ListReplies(ctx context.Context, parentID int64) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE parent_id = ? ORDER BY created_at, id`,
		parentID)
}

func (r *commentRepo) ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE article_id = ? ORDER BY created_at, id`,
		articleID)
}

func (r *commentRepo) list(ctx context.Context, query string, arg any) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func scanComment(s rowScanner) (*domain.Comment, error) {
	c := &domain.Comment{}
	var parent sql.NullInt64
	if err := s.Scan(&c.ID, &c.ArticleID, &parent, &c.AuthorID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.Int64
		c.ParentID = &p
	}
	return c, nil
}
