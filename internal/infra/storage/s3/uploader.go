package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores photo content in an object store and returns the URL
// guests will see on the villa page.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}

// Config carries the connection settings for an S3-compatible endpoint.
// PublicEndpoint is what gets baked into photo URLs; it falls back to
// Endpoint when empty (single-host MinIO setups).
type Config struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

// Client uploads villa photos to a MinIO/S3 bucket. The bucket is
// created on first use and opened for public reads.
type Client struct {
	cfg    Config
	api    *minio.Client
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	if cfg.Endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	if cfg.PublicEndpoint = strings.TrimSpace(cfg.PublicEndpoint); cfg.PublicEndpoint == "" {
		cfg.PublicEndpoint = cfg.Endpoint
	}
	cfg.PublicEndpoint = strings.TrimRight(cfg.PublicEndpoint, "/")

	api, err := minio.New(hostOf(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: client: %w", err)
	}
	return &Client{cfg: cfg, api: api, logger: logger}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := c.api.PutObject(ctx, c.cfg.Bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", c.cfg.PublicEndpoint, c.cfg.Bucket, key)
	if c.logger != nil {
		c.logger.Info("photo uploaded", "bucket", c.cfg.Bucket, "key", key, "url", publicURL)
	}
	return publicURL, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.initOnce.Do(func() {
		exists, err := c.api.BucketExists(ctx, c.cfg.Bucket)
		if err != nil {
			c.initErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.api.MakeBucket(ctx, c.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			c.initErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		// Photos are served straight from the bucket, no signed URLs.
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, c.cfg.Bucket)
		if err := c.api.SetBucketPolicy(ctx, c.cfg.Bucket, policy); err != nil {
			c.initErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return c.initErr
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// NoopUploader fails fast when no object store is configured.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("s3: uploader is not configured")
}

var (
	_ Uploader = (*Client)(nil)
	_ Uploader = NoopUploader{}
)
