// Package storage issues signed upload targets for article images.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/msomdec/inkwell/internal/domain"
)

// DefaultExpiry is how long a signed upload location stays valid.
const DefaultExpiry = 15 * time.Minute

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	Endpoint      string // Empty for AWS itself
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // Where stored objects are served from
	UsePathStyle  bool
	Expiry        time.Duration
}

// S3Presigner signs PUT requests straight to the bucket.
type S3Presigner struct {
	presign   *s3.PresignClient
	bucket    string
	publicURL string
	expiry    time.Duration
}

func NewS3Presigner(ctx context.Context, cfg S3Config) (*S3Presigner, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", domain.ErrInvalidInput)
	}
	if cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("%w: public base url is required", domain.ErrInvalidInput)
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &S3Presigner{
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		expiry:    expiry,
	}, nil
}

// PresignPut signs a single PUT of key. The uploader must send the same
// Content-Type header.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string) (*domain.UploadTarget, error) {
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return nil, fmt.Errorf("presign put object: %w", err)
	}

	return &domain.UploadTarget{
		Key:       key,
		SignedURL: req.URL,
		PublicURL: p.publicURL + "/" + key,
		ExpiresAt: time.Now().Add(p.expiry).UTC(),
	}, nil
}
