package receipt

import "context"

// BlobStore is the object storage surface the reconciler needs. The S3
// implementation lives under internal/platform/s3.
type BlobStore interface {
	// Head returns blob metadata, or (nil, nil) when the key does not exist.
	Head(ctx context.Context, key string) (*HeadDetails, error)

	// Copy duplicates a blob within the store.
	Copy(ctx context.Context, srcKey, dstKey string) error

	// AddTags applies the given tag set to every key.
	AddTags(ctx context.Context, keys []string, tags map[string]string) error

	// DeleteTags removes all tags from every key.
	DeleteTags(ctx context.Context, keys []string) error
}
