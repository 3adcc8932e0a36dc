package middleware

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/mfinch/myfinance-backend/internal/api/response"
)

// Principal is the caller identity resolved by the API Gateway authorizer.
type Principal struct {
	UserID string
	Role   string
}

type principalKey struct{}

// PrincipalFrom returns the principal stored by AuthMiddleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// AuthMiddleware lifts the authorizer context into a typed principal and
// rejects requests that arrive without one. Token validation itself happens
// in the authorizer lambda; by the time a request reaches a handler the
// only question is whether the identity survived the hop.
type AuthMiddleware struct{}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware() AuthMiddleware {
	return AuthMiddleware{}
}

// Handle handles the auth middleware
func (m AuthMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		userID, _ := request.RequestContext.Authorizer["userId"].(string)
		if userID == "" {
			logger.Warn("request without authorizer identity",
				"path", request.Path,
				"requestId", request.RequestContext.RequestID)
			return response.Unauthorized("caller identity is missing", request.RequestContext.RequestID), nil
		}
		role, _ := request.RequestContext.Authorizer["role"].(string)

		ctx = context.WithValue(ctx, principalKey{}, Principal{UserID: userID, Role: role})
		return next(ctx, logger, request)
	}
}
