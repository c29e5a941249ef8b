package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sethvargo/go-retry"

	"github.com/akalniens/keepsync/internal/common"
)

// S3Config holds connection settings for the object store. Endpoint is the
// base URL of an S3-compatible service (MinIO in development).
type S3Config struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
}

// S3Store implements Store over an S3-compatible object store.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store builds an S3-backed blob store from static credentials.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.Endpoint, "/"),
	}, nil
}

func (s *S3Store) urlFor(key string) string {
	return s.baseURL + "/" + s.bucket + "/" + key
}

func (s *S3Store) keyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("bad blob url %q: %w", rawURL, err)
	}
	key := strings.TrimPrefix(u.Path, "/"+s.bucket+"/")
	if key == u.Path || key == "" {
		return "", fmt.Errorf("blob url %q is not under bucket %q", rawURL, s.bucket)
	}
	return key, nil
}

// Upload writes the object, retrying transient failures with backoff, and
// returns the object's URL.
func (s *S3Store) Upload(ctx context.Context, path string, data []byte) (string, error) {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(path),
			Body:   bytes.NewReader(data),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("blob upload failed: %w", err)
	}
	return s.urlFor(path), nil
}

// Download fetches the object behind url. Returns common.ErrBlobNotFound if
// the object does not exist.
func (s *S3Store) Download(ctx context.Context, rawURL string) ([]byte, error) {
	key, err := s.keyFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, common.ErrBlobNotFound
		}
		return nil, fmt.Errorf("blob download failed: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("blob read failed: %w", err)
	}
	return data, nil
}

// Delete removes the object at path.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("blob delete failed: %w", err)
	}
	return nil
}
