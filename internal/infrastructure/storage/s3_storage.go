// Package storage archives processed XML payloads in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/config"
	"go.uber.org/zap"
)

// XMLContentType is stored on every archived payload
const XMLContentType = "application/xml"

const (
	defaultEndpoint = "http://localhost:9000"
	defaultRegion   = "us-east-1"
)

var _ integration.PayloadArchive = (*S3PayloadArchive)(nil)

// S3PayloadArchive writes inbound payloads and rendered outbound documents to
// one bucket. Any S3-compatible server works (AWS S3, MinIO, RustFS).
type S3PayloadArchive struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	logger    *zap.Logger
}

// S3PayloadArchiveOption configures an S3PayloadArchive
type S3PayloadArchiveOption func(*S3PayloadArchive)

// WithLogger sets the archive logger
func WithLogger(logger *zap.Logger) S3PayloadArchiveOption {
	return func(s *S3PayloadArchive) {
		s.logger = logger
	}
}

// NewS3PayloadArchive builds an archive client from the storage settings.
// No request is sent until EnsureBucket or Archive.
func NewS3PayloadArchive(cfg *config.StorageConfig, opts ...S3PayloadArchiveOption) (*S3PayloadArchive, error) {
	if err := checkStorageConfig(cfg); err != nil {
		return nil, err
	}

	endpoint, err := baseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 client config: %w", err)
	}

	s := &S3PayloadArchive{
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		}),
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func checkStorageConfig(cfg *config.StorageConfig) error {
	switch {
	case cfg == nil:
		return errors.New("storage configuration is required")
	case cfg.Bucket == "":
		return errors.New("storage bucket is required")
	case cfg.AccessKey == "":
		return errors.New("storage access key is required")
	case cfg.SecretKey == "":
		return errors.New("storage secret key is required")
	}
	return nil
}

// baseEndpoint adds the scheme to a bare host:port
func baseEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return defaultEndpoint, nil
	}
	if !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

// EnsureBucket creates the archive bucket when HeadBucket reports it missing
func (s *S3PayloadArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isMissingBucket(err) {
		return fmt.Errorf("failed to check archive bucket %s: %w", s.bucket, err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create archive bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Archive bucket created", zap.String("bucket", s.bucket))
	return nil
}

func isMissingBucket(err error) bool {
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	return errors.As(err, &notFound) || errors.As(err, &noSuchBucket)
}

// Archive stores body at ObjectKey(key)
func (s *S3PayloadArchive) Archive(ctx context.Context, key string, body []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	objectKey := s.ObjectKey(key)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(XMLContentType),
		ContentLength: aws.Int64(int64(len(body))),
	}); err != nil {
		return fmt.Errorf("failed to archive payload %s: %w", objectKey, err)
	}

	s.logger.Debug("Payload archived", zap.String("key", objectKey), zap.Int("bytes", len(body)))
	return nil
}

// ObjectKey prefixes key with the configured key prefix
func (s *S3PayloadArchive) ObjectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if s.keyPrefix == "" {
		return key
	}
	return path.Join(s.keyPrefix, key)
}

// GetBucket returns the archive bucket
func (s *S3PayloadArchive) GetBucket() string {
	return s.bucket
}
