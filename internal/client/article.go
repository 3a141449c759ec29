package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/msomdec/inkwell/internal/domain"
)

// ArticleClient creates and updates articles.
type ArticleClient struct {
	base
}

func NewArticleClient(baseURL string, creds *Credentials, opts ...Option) *ArticleClient {
	return &ArticleClient{base: newBase(baseURL, creds, opts)}
}

type saveResponse struct {
	Success   bool   `json:"success"`
	ArticleID string `json:"articleId"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

func (r saveResponse) err() error {
	if r.Success {
		return nil
	}
	msg := r.Error
	if msg == "" {
		msg = r.Message
	}
	if msg == "" {
		msg = "article save was not successful"
	}
	return errors.New(msg)
}

// Create submits a new article and returns its id.
// POST /api/articles
func (c *ArticleClient) Create(ctx context.Context, input domain.ArticleInput) (string, error) {
	var resp saveResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/articles", input, &resp); err != nil {
		return "", err
	}
	if err := resp.err(); err != nil {
		return "", err
	}
	if resp.ArticleID == "" {
		return "", errors.New("create response has no articleId")
	}
	return resp.ArticleID, nil
}

// Update replaces an existing article.
// PUT /api/articles/{id}
func (c *ArticleClient) Update(ctx context.Context, articleID string, input domain.ArticleInput) error {
	var resp saveResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/articles/"+url.PathEscape(articleID), input, &resp); err != nil {
		return err
	}
	return resp.err()
}
