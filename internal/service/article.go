package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/inkwell/internal/domain"
)

const (
	maxTitleLength  = 200
	maxLabelCount   = 20
	homepageSnippet = 180
)

// ArticleSummary is a published article as listed on the homepage.
type ArticleSummary struct {
	domain.Article
	Snippet string
}

// ArticleService handles article authoring and reading rules.
type ArticleService struct {
	articles domain.ArticleRepository
	now      func() time.Time
}

// NewArticleService creates a new ArticleService.
func NewArticleService(articles domain.ArticleRepository) *ArticleService {
	return &ArticleService{articles: articles, now: time.Now}
}

// Create stores a new article owned by author.
func (s *ArticleService) Create(ctx context.Context, author *domain.User, in domain.ArticleInput) (*domain.Article, error) {
	if author == nil {
		return nil, domain.ErrUnauthorized
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	status, err := normalizeStatus(in.Status, domain.ArticleStatusDraft)
	if err != nil {
		return nil, err
	}

	article := &domain.Article{
		ID:               uuid.NewString(),
		AuthorID:         author.ID,
		AuthorName:       authorName(in.AuthorName, author),
		Title:            title,
		Content:          in.Content,
		ShortDescription: strings.TrimSpace(in.ShortDescription),
		Status:           status,
		Categories:       NormalizeLabels(in.Categories),
		Tags:             NormalizeLabels(in.Tags),
		ImageURL:         deref(in.ImageURL),
	}
	if status == domain.ArticleStatusPublished {
		now := s.now().UTC()
		article.PublishedAt = &now
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return article, nil
}

// Get returns an article visible to viewer. Published articles are public;
// drafts are only visible to their author. viewer may be nil.
func (s *ArticleService) Get(ctx context.Context, id string, viewer *domain.User) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Status == domain.ArticleStatusPublished {
		return article, nil
	}
	if viewer == nil {
		return nil, fmt.Errorf("%w: sign in to view drafts", domain.ErrUnauthorized)
	}
	if viewer.ID != article.AuthorID {
		return nil, domain.ErrForbidden
	}
	return article, nil
}

// Update replaces the editable fields of an article owned by user.
// Nil category or tag lists keep the stored values; an empty status keeps
// the stored status.
func (s *ArticleService) Update(ctx context.Context, user *domain.User, id string, in domain.ArticleInput) (*domain.Article, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	article, err := s.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	status, err := normalizeStatus(in.Status, article.Status)
	if err != nil {
		return nil, err
	}

	article.Title = title
	article.Content = in.Content
	article.ShortDescription = strings.TrimSpace(in.ShortDescription)
	article.Status = status
	article.ImageURL = deref(in.ImageURL)
	if name := strings.TrimSpace(in.AuthorName); name != "" {
		article.AuthorName = name
	}
	if in.Categories != nil {
		article.Categories = NormalizeLabels(in.Categories)
	}
	if in.Tags != nil {
		article.Tags = NormalizeLabels(in.Tags)
	}
	if status == domain.ArticleStatusPublished && article.PublishedAt == nil {
		now := s.now().UTC()
		article.PublishedAt = &now
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return article, nil
}

// Delete removes an article owned by user.
func (s *ArticleService) Delete(ctx context.Context, user *domain.User, id string) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	if _, err := s.owned(ctx, user, id); err != nil {
		return err
	}
	return s.articles.Delete(ctx, id)
}

// ListByAuthor returns every article of a user, drafts included.
func (s *ArticleService) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Article, error) {
	return s.articles.ListByAuthor(ctx, authorID)
}

// ListPublic returns published articles, optionally narrowed to one
// category or tag.
func (s *ArticleService) ListPublic(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	filter.Category = normalizeLabel(filter.Category)
	filter.Tag = normalizeLabel(filter.Tag)
	if filter.Category != "" && filter.Tag != "" {
		return nil, fmt.Errorf("%w: filter by category or tag, not both", domain.ErrInvalidInput)
	}
	return s.articles.ListPublished(ctx, filter)
}

// Homepage returns the latest published articles as summaries.
func (s *ArticleService) Homepage(ctx context.Context, limit int) ([]ArticleSummary, error) {
	articles, err := s.articles.ListPublished(ctx, domain.ArticleFilter{Limit: limit})
	if err != nil {
		return nil, err
	}

	return Summarize(articles), nil
}

// Summarize pairs each article with a plain-text snippet. The short
// description is used when the author wrote one, and the first body image
// stands in for a missing cover.
func Summarize(articles []domain.Article) []ArticleSummary {
	summaries := make([]ArticleSummary, 0, len(articles))
	for _, a := range articles {
		snippet := a.ShortDescription
		if snippet == "" {
			snippet = Snippet(a.Content, homepageSnippet)
		}
		if a.ImageURL == "" {
			a.ImageURL = FirstImage(a.Content)
		}
		summaries = append(summaries, ArticleSummary{Article: a, Snippet: snippet})
	}
	return summaries
}

func (s *ArticleService) owned(ctx context.Context, user *domain.User, id string) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article.AuthorID != user.ID {
		return nil, domain.ErrForbidden
	}
	return article, nil
}

// NormalizeLabels trims, lowercases and deduplicates category or tag
// names, dropping empty ones and keeping first-seen order.
func NormalizeLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = normalizeLabel(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
		if len(out) == maxLabelCount {
			break
		}
	}
	return out
}

// Labels are stored comma delimited, so commas are not allowed inside one.
func normalizeLabel(l string) string {
	l = strings.ReplaceAll(l, ",", " ")
	return strings.ToLower(strings.Join(strings.Fields(l), " "))
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len([]rune(title)) > maxTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", domain.ErrInvalidInput, maxTitleLength)
	}
	return title, nil
}

func normalizeStatus(status, fallback string) (string, error) {
	switch status = strings.ToLower(strings.TrimSpace(status)); status {
	case "":
		return fallback, nil
	case domain.ArticleStatusDraft, domain.ArticleStatusPublished:
		return status, nil
	default:
		return "", fmt.Errorf("%w: status must be draft or published", domain.ErrInvalidInput)
	}
}

func authorName(name string, author *domain.User) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return author.Byline()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
