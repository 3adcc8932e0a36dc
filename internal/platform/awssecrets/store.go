// Package awssecrets resolves application secrets through Secrets Manager,
// fronted by the in-process cache so a warm lambda does not call the service
// on every request.
package awssecrets

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
)

// Store fetches secret strings with caching.
type Store struct {
	cache  *secretcache.Cache
	client *secretsmanager.Client
	logger *slog.Logger
}

// New creates a new Store
func New(ctx context.Context, region string, logger *slog.Logger) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := secretsmanager.NewFromConfig(cfg)

	cache, err := secretcache.New(func(c *secretcache.Cache) {
		c.Client = client
	})
	if err != nil {
		// The cache is an optimization; fall back to direct calls.
		logger.Warn("secret cache unavailable, using direct lookups", "error", err)
		cache = nil
	}

	return &Store{cache: cache, client: client, logger: logger}, nil
}

// GetSecret returns the secret string for the given id.
func (s *Store) GetSecret(ctx context.Context, secretID string) (string, error) {
	if s.cache != nil {
		value, err := s.cache.GetSecretStringWithContext(ctx, secretID)
		if err == nil {
			return value, nil
		}
		s.logger.Warn("cached secret lookup failed, trying direct", "error", err)
	}
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.SecretString), nil
}
