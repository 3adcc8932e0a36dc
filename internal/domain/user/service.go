package user

import (
	"context"
	"log/slog"
	"time"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
)

// SecretProvider resolves the token signing secret. Backed by the Secrets
// Manager cache in production.
type SecretProvider interface {
	GetSecret(ctx context.Context, secretID string) (string, error)
}

// Service authenticates users and mints and verifies session tokens.
type Service struct {
	repo     Repository
	secrets  SecretProvider
	secretID string
	tokenTTL time.Duration
	logger   *slog.Logger

	now func() time.Time
}

func NewService(repo Repository, secrets SecretProvider, secretID string, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		secrets:  secrets,
		secretID: secretID,
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// LoginResult carries a freshly minted session token.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Login verifies the credentials and issues a session token. Unknown email,
// wrong password and disabled account all report the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, commonErrors.NewUnAuthorizedError("invalid credentials")
	}
	details, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if details == nil || details.Status != StatusEnable || !VerifyPassword(details.PasswordHash, password) {
		return nil, commonErrors.NewUnAuthorizedError("invalid credentials")
	}

	secret, err := s.secrets.GetSecret(ctx, s.secretID)
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to load signing secret", err)
	}
	role := details.Role
	if role == "" {
		role = RoleUser
	}
	token, err := IssueToken([]byte(secret), details.ID, role, s.tokenTTL, s.now())
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, ExpiresIn: int64(s.tokenTTL.Seconds())}, nil
}

// Authorize validates a session token and resolves the caller's identity.
func (s *Service) Authorize(ctx context.Context, token string) (*AuthorizedUser, error) {
	secret, err := s.secrets.GetSecret(ctx, s.secretID)
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to load signing secret", err)
	}
	claims, err := ParseToken([]byte(secret), token)
	if err != nil {
		return nil, err
	}
	return &AuthorizedUser{UserID: claims.Subject, Role: claims.Role}, nil
}
