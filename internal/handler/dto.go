package handler

import (
	"time"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

// ArticleDTO is the JSON representation of an article.
type ArticleDTO struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	ShortDescription string   `json:"shortDescription"`
	Status           string   `json:"status"`
	AuthorID         int64    `json:"authorId"`
	AuthorName       string   `json:"authorName"`
	Categories       []string `json:"categories"`
	Tags             []string `json:"tags"`
	ImageURL         *string  `json:"imageUrl"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
	PublishedAt      *string  `json:"publishedAt"`
}

func toArticleDTO(a *domain.Article) ArticleDTO {
	dto := ArticleDTO{
		ID:               a.ID,
		Title:            a.Title,
		Content:          a.Content,
		ShortDescription: a.ShortDescription,
		Status:           a.Status,
		AuthorID:         a.AuthorID,
		AuthorName:       a.AuthorName,
		Categories:       nonNil(a.Categories),
		Tags:             nonNil(a.Tags),
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.Format(time.RFC3339),
	}
	if a.ImageURL != "" {
		dto.ImageURL = &a.ImageURL
	}
	if a.PublishedAt != nil {
		s := a.PublishedAt.Format(time.RFC3339)
		dto.PublishedAt = &s
	}
	return dto
}

func toArticleDTOs(articles []domain.Article) []ArticleDTO {
	dtos := make([]ArticleDTO, len(articles))
	for i := range articles {
		dtos[i] = toArticleDTO(&articles[i])
	}
	return dtos
}

// ArticleSummaryDTO is the JSON representation of a homepage entry.
type ArticleSummaryDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Snippet     string   `json:"snippet"`
	AuthorName  string   `json:"authorName"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	ImageURL    *string  `json:"imageUrl"`
	PublishedAt *string  `json:"publishedAt"`
}

func toSummaryDTOs(summaries []service.ArticleSummary) []ArticleSummaryDTO {
	dtos := make([]ArticleSummaryDTO, len(summaries))
	for i, s := range summaries {
		full := toArticleDTO(&s.Article)
		dtos[i] = ArticleSummaryDTO{
			ID:          full.ID,
			Title:       full.Title,
			Snippet:     s.Snippet,
			AuthorName:  full.AuthorName,
			Categories:  full.Categories,
			Tags:        full.Tags,
			ImageURL:    full.ImageURL,
			PublishedAt: full.PublishedAt,
		}
	}
	return dtos
}

// CommentDTO is the JSON representation of a comment. Replies is only
// populated in thread responses.
type CommentDTO struct {
	ID         int64        `json:"id"`
	ArticleID  string       `json:"articleId"`
	ParentID   *int64       `json:"parentId"`
	AuthorID   int64        `json:"authorId"`
	AuthorName string       `json:"authorName"`
	Body       string       `json:"body"`
	CreatedAt  string       `json:"createdAt"`
	Replies    []CommentDTO `json:"replies,omitempty"`
}

func toCommentDTO(c *domain.Comment) CommentDTO {
	dto := CommentDTO{
		ID:         c.ID,
		ArticleID:  c.ArticleID,
		ParentID:   c.ParentID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
	if len(c.Replies) > 0 {
		dto.Replies = toCommentDTOs(c.Replies)
	}
	return dto
}

func toCommentDTOs(comments []domain.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i := range comments {
		dtos[i] = toCommentDTO(&comments[i])
	}
	return dtos
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
