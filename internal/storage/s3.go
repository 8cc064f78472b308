package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/forensic-case-service/internal/config"
)

// S3BlobStore stores evidence files in an S3 bucket and serves reads
// through presigned GET URLs. When a redis client is provided, presigned
// URLs are cached with a TTL shorter than the presign expiry so cached
// links never outlive their signature.
type S3BlobStore struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	presignTTL time.Duration
	cache      *redis.Client
	logger     *zap.Logger
}

// NewS3BlobStore builds the store from service configuration.
func NewS3BlobStore(ctx context.Context, cfg config.StorageConfig, cache *redis.Client, logger *zap.Logger) (*S3BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := time.Duration(cfg.PresignTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}

	store := &S3BlobStore{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.S3Bucket,
		presignTTL: ttl,
		logger:     logger,
	}
	if cfg.URLCacheEnabled {
		store.cache = cache
	}
	return store, nil
}

func (s *S3BlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", ref, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, urlCacheKey(ref)).Err()
	}
	return nil
}

func (s *S3BlobStore) PublicURL(ctx context.Context, ref string) (string, error) {
	if s.cache != nil {
		if url, err := s.cache.Get(ctx, urlCacheKey(ref)).Result(); err == nil && url != "" {
			return url, nil
		}
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", ref, err)
	}

	if s.cache != nil {
		// Cache for 90% of the presign window so a cached URL is
		// always still valid when handed out.
		cacheTTL := s.presignTTL * 9 / 10
		if err := s.cache.Set(ctx, urlCacheKey(ref), req.URL, cacheTTL).Err(); err != nil {
			s.logger.Debug("url cache write failed", zap.Error(err))
		}
	}
	return req.URL, nil
}

func urlCacheKey(ref string) string {
	return "evidence_url:" + ref
}
