// Package storage wraps the S3 API for R2-compatible object stores. Resume
// bodies and model artifacts both live behind this client.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/config"
)

type Client struct {
	s3     *s3.Client
	bucket string
	log    *zap.Logger
}

// New builds a client against the configured endpoint. Without an explicit
// endpoint the Cloudflare R2 endpoint is derived from the account id.
func New(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})

	log.Debug("object storage client ready",
		zap.String("endpoint", endpoint),
		zap.String("bucket", cfg.Bucket),
	)
	return &Client{s3: client, bucket: cfg.Bucket, log: log}, nil
}

func (c *Client) Bucket() string { return c.bucket }

// URL renders the canonical s3:// form for a key in the default bucket.
func (c *Client) URL(key string) string {
	return fmt.Sprintf("s3://%s/%s", c.bucket, key)
}

// Download fetches an object fully into memory. An empty bucket selects
// the client's default bucket.
func (c *Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		bucket = c.bucket
	}
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

// Upload stores an object in the default bucket.
func (c *Client) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", c.bucket, key, err)
	}
	return nil
}
