package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client is the interface for S3 operations
type Client interface {
	// HeadObject retrieves object metadata without the body
	HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)

	// CopyObject duplicates an object within the bucket
	CopyObject(ctx context.Context, params *awss3.CopyObjectInput, optFns ...func(*awss3.Options)) (*awss3.CopyObjectOutput, error)

	// PutObjectTagging replaces an object's tag set
	PutObjectTagging(ctx context.Context, params *awss3.PutObjectTaggingInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectTaggingOutput, error)

	// DeleteObjectTagging removes an object's tag set
	DeleteObjectTagging(ctx context.Context, params *awss3.DeleteObjectTaggingInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectTaggingOutput, error)
}

// NewClient creates an AWS S3 client satisfying the Client interface
func NewClient(ctx context.Context, region string) (*awss3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return awss3.NewFromConfig(cfg), nil
}
