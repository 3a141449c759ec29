package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msomdec/inkwell/internal/domain"
)

const uploadAudience = "inkwell-upload"

// LocalPresigner issues upload targets on this server. The signed URL
// carries a short-lived token bound to the key and content type; the bytes
// end up in the database file store and are served under /media/.
type LocalPresigner struct {
	secret  []byte
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

func NewLocalPresigner(secret, baseURL string, expiry time.Duration) *LocalPresigner {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &LocalPresigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		expiry:  expiry,
		now:     time.Now,
	}
}

type uploadClaims struct {
	ContentType string `json:"ct"`
	jwt.RegisteredClaims
}

func (p *LocalPresigner) PresignPut(ctx context.Context, key, contentType string) (*domain.UploadTarget, error) {
	now := p.now()
	expires := now.Add(p.expiry)
	claims := uploadClaims{
		ContentType: contentType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			Audience:  jwt.ClaimStrings{uploadAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign upload token: %w", err)
	}

	return &domain.UploadTarget{
		Key:       key,
		SignedURL: p.baseURL + "/uploads/" + escapeKey(key) + "?token=" + url.QueryEscape(token),
		PublicURL: p.baseURL + "/media/" + escapeKey(key),
		ExpiresAt: expires.UTC(),
	}, nil
}

// Verify checks an upload token for key and returns the content type it
// was issued for.
func (p *LocalPresigner) Verify(token, key string) (string, error) {
	var claims uploadClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(uploadAudience),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: upload token: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject != key {
		return "", fmt.Errorf("%w: upload token is for another key", domain.ErrUnauthorized)
	}
	return claims.ContentType, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
