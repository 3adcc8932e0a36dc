package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/mfinch/myfinance-backend/internal/domain/receipt"
)

const headCacheTTL = 30 * time.Second

// ReceiptStore implements the receipt.BlobStore interface on one S3
// bucket. Head lookups go through a short-lived cache; everything else is a
// straight pass-through.
type ReceiptStore struct {
	client Client
	bucket string
	cache  *headCache
	logger *slog.Logger
}

// NewReceiptStore creates a new ReceiptStore
func NewReceiptStore(client Client, bucket string, logger *slog.Logger) *ReceiptStore {
	return &ReceiptStore{
		client: client,
		bucket: bucket,
		cache:  newHeadCache(headCacheTTL),
		logger: logger,
	}
}

// Head returns the blob's metadata, or (nil, nil) when the key does not
// exist.
func (s *ReceiptStore) Head(ctx context.Context, key string) (*receipt.HeadDetails, error) {
	if details, ok := s.cache.get(key); ok {
		return details, nil
	}
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("head object %s: %w", key, err)
	}
	details := receipt.HeadDetails{
		ContentType:   aws.ToString(out.ContentType),
		ContentLength: aws.ToInt64(out.ContentLength),
		LastModified:  aws.ToTime(out.LastModified),
	}
	s.cache.set(key, details)
	return &details, nil
}

// Copy duplicates a blob within the bucket.
func (s *ReceiptStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := s.client.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(url.PathEscape(s.bucket + "/" + srcKey)),
	})
	if err != nil {
		return fmt.Errorf("copy object %s to %s: %w", srcKey, dstKey, err)
	}
	s.cache.invalidate(dstKey)
	return nil
}

// AddTags applies the tag set to every key.
func (s *ReceiptStore) AddTags(ctx context.Context, keys []string, tags map[string]string) error {
	tagSet := make([]types.Tag, 0, len(tags))
	for key, value := range tags {
		tagSet = append(tagSet, types.Tag{Key: aws.String(key), Value: aws.String(value)})
	}
	for _, key := range keys {
		_, err := s.client.PutObjectTagging(ctx, &awss3.PutObjectTaggingInput{
			Bucket:  aws.String(s.bucket),
			Key:     aws.String(key),
			Tagging: &types.Tagging{TagSet: tagSet},
		})
		if err != nil {
			return fmt.Errorf("tag object %s: %w", key, err)
		}
	}
	return nil
}

// DeleteTags clears the tag set of every key.
func (s *ReceiptStore) DeleteTags(ctx context.Context, keys []string) error {
	for _, key := range keys {
		_, err := s.client.DeleteObjectTagging(ctx, &awss3.DeleteObjectTaggingInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("untag object %s: %w", key, err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}
