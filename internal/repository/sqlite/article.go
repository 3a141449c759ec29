package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
)

// articleRepo implements domain.ArticleRepository using SQLite.
// Categories and tags are stored as ",a,b," so a single LIKE matches one value.
type articleRepo struct {
	db *sql.DB
}

const articleColumns = `id, author_id, author_name, title, content, short_description, status,
	categories, tags, image_url, created_at, updated_at, published_at`

func (r *articleRepo) Create(ctx context.Context, a *domain.Article) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (`+articleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.AuthorID, a.AuthorName, a.Title, a.Content, a.ShortDescription, a.Status,
		joinList(a.Categories), joinList(a.Tags), a.ImageURL, now, now, nullTime(a.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

func (r *articleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

func (r *articleRepo) Update(ctx context.Context, a *domain.Article) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE articles SET author_name = ?, title = ?, content = ?, short_description = ?, status = ?,
		 categories = ?, tags = ?, image_url = ?, updated_at = ?, published_at = ?
		 WHERE id = ?`,
		a.AuthorName, a.Title, a.Content, a.ShortDescription, a.Status,
		joinList(a.Categories), joinList(a.Tags), a.ImageURL, now, nullTime(a.PublishedAt), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	a.UpdatedAt = now
	return nil
}

func (r *articleRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *articleRepo) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE author_id = ? ORDER BY updated_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list articles by author: %w", err)
	}
	return collectArticles(rows)
}

func (r *articleRepo) ListPublished(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE status = ?`
	args := []any{domain.ArticleStatusPublished}

	if filter.Category != "" {
		query += ` AND categories LIKE ?`
		args = append(args, "%,"+filter.Category+",%")
	}
	if filter.Tag != "" {
		query += ` AND tags LIKE ?`
		args = append(args, "%,"+filter.Tag+",%")
	}
	query += ` ORDER BY published_at DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	return collectArticles(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(s rowScanner) (*domain.Article, error) {
	a := &domain.Article{}
	var categories, tags string
	var published sql.NullTime
	err := s.Scan(&a.ID, &a.AuthorID, &a.AuthorName, &a.Title, &a.Content, &a.ShortDescription, &a.Status,
		&categories, &tags, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt, &published)
	if err != nil {
		return nil, err
	}
	a.Categories = splitList(categories)
	a.Tags = splitList(tags)
	if published.Valid {
		t := published.Time
		a.PublishedAt = &t
	}
	return a, nil
}

func collectArticles(rows *sql.Rows) ([]domain.Article, error) {
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func joinList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return "," + strings.Join(values, ",") + ","
}

func splitList(s string) []string {
	s = strings.Trim(s, ",")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
