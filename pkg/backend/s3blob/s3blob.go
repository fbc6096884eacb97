// Package s3blob implements the backend.Backend contract against an S3 or
// S3-compatible object store (AWS S3, MinIO, Cubbit DS3, and similar).
// Each shard is stored as one object, keyed by the shared stripe/shard
// naming discipline in pkg/backend.
package s3blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cloudraidfs/cloudraidfs/pkg/backend"
)

// Store stores shards as objects in an S3-compatible bucket.
//
// Thread Safety:
// Safe for concurrent use by multiple goroutines; the underlying AWS SDK
// client is itself safe for concurrent use.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	name      string
}

// Config configures a Store.
type Config struct {
	// Client is a configured S3 client, typically constructed with a
	// custom endpoint resolver for S3-compatible providers.
	Client *s3.Client

	// Bucket is the destination bucket. Must already exist.
	Bucket string

	// KeyPrefix is prepended to every object key, e.g. "cloudraidfs/".
	KeyPrefix string
}

// New creates an S3-backed backend. It verifies bucket access with a
// HeadBucket call before returning.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3blob: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3blob: bucket is required")
	}

	if _, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("s3blob: access bucket %q: %w", cfg.Bucket, err)
	}

	return &Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		name:      "s3:" + cfg.Bucket,
	}, nil
}

func (s *Store) Name() string { return s.name }

func (s *Store) objectKey(stripeID uint64, shardID uint32) string {
	key := backend.ObjectKey(stripeID, shardID)
	if s.keyPrefix != "" {
		return s.keyPrefix + key
	}
	return key
}

func (s *Store) Read(ctx context.Context, stripeID uint64, shardID uint32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(stripeID, shardID)),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("s3blob: stripe %d shard %d: %w", stripeID, shardID, backend.ErrNotFound)
		}
		return nil, fmt.Errorf("s3blob: get stripe %d shard %d: %w", stripeID, shardID, backend.ErrTransientIO)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("s3blob: download stripe %d shard %d: %w", stripeID, shardID, backend.ErrTransientIO)
	}
	return data, nil
}

func (s *Store) Write(ctx context.Context, stripeID uint64, shardID uint32, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(stripeID, shardID)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put stripe %d shard %d: %w", stripeID, shardID, backend.ErrTransientIO)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, stripeID uint64, shardID uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(stripeID, shardID)),
	})
	if err != nil {
		return fmt.Errorf("s3blob: delete stripe %d shard %d: %w", stripeID, shardID, backend.ErrPermanentIO)
	}
	return nil
}
