package s3

import (
	"context"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockS3Client is a mock implementation of the Client interface for testing
type MockS3Client struct {
	HeadObjectFn          func(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
	CopyObjectFn          func(ctx context.Context, params *awss3.CopyObjectInput, optFns ...func(*awss3.Options)) (*awss3.CopyObjectOutput, error)
	PutObjectTaggingFn    func(ctx context.Context, params *awss3.PutObjectTaggingInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectTaggingOutput, error)
	DeleteObjectTaggingFn func(ctx context.Context, params *awss3.DeleteObjectTaggingInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectTaggingOutput, error)
}

// NewMockS3Client creates a new mock S3 client
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{}
}

// HeadObject implements the Client.HeadObject method
func (m *MockS3Client) HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	if m.HeadObjectFn != nil {
		return m.HeadObjectFn(ctx, params, optFns...)
	}
	return &awss3.HeadObjectOutput{}, nil
}

// CopyObject implements the Client.CopyObject method
func (m *MockS3Client) CopyObject(ctx context.Context, params *awss3.CopyObjectInput, optFns ...func(*awss3.Options)) (*awss3.CopyObjectOutput, error) {
	if m.CopyObjectFn != nil {
		return m.CopyObjectFn(ctx, params, optFns...)
	}
	return &awss3.CopyObjectOutput{}, nil
}

// PutObjectTagging implements the Client.PutObjectTagging method
func (m *MockS3Client) PutObjectTagging(ctx context.Context, params *awss3.PutObjectTaggingInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectTaggingOutput, error) {
	if m.PutObjectTaggingFn != nil {
		return m.PutObjectTaggingFn(ctx, params, optFns...)
	}
	return &awss3.PutObjectTaggingOutput{}, nil
}

// DeleteObjectTagging implements the Client.DeleteObjectTagging method
func (m *MockS3Client) DeleteObjectTagging(ctx context.Context, params *awss3.DeleteObjectTaggingInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectTaggingOutput, error) {
	if m.DeleteObjectTaggingFn != nil {
		return m.DeleteObjectTaggingFn(ctx, params, optFns...)
	}
	return &awss3.DeleteObjectTaggingOutput{}, nil
}
