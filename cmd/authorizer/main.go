package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/mfinch/myfinance-backend/internal/common/config"
	"github.com/mfinch/myfinance-backend/internal/domain/user"
	"github.com/mfinch/myfinance-backend/internal/platform/awssecrets"
)

var (
	userService *user.Service
	appConfig   *config.Config
	zlog        *zap.Logger
)

func init() {
	var err error
	zlog, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	appConfig, err = config.LoadFromEnv()
	if err != nil {
		zlog.Fatal("Failed to load configuration", zap.Error(err))
	}
	if appConfig.TokenSecretID == "" {
		zlog.Fatal("TOKEN_SECRET_ID not set")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	secrets, err := awssecrets.New(context.Background(), appConfig.AWSRegion, logger)
	if err != nil {
		zlog.Fatal("Failed to create secrets store", zap.Error(err))
	}

	// Token verification only; no user lookups happen here.
	userService = user.NewService(nil, secrets, appConfig.TokenSecretID,
		time.Duration(appConfig.TokenExpiryInSec)*time.Second, logger)
}

// handler is the Lambda function handler for API Gateway REST API Request Authorizer
func handler(ctx context.Context, request events.APIGatewayCustomAuthorizerRequestTypeRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
	authHeader := request.Headers["Authorization"]
	if authHeader == "" {
		authHeader = request.Headers["authorization"] // Case-insensitive fallback
	}

	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		zlog.Warn("Missing or invalid Authorization header")
		return generatePolicy("user", "Deny", request.MethodArn, nil), nil
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	authorized, err := userService.Authorize(ctx, token)
	if err != nil {
		zlog.Warn("Token validation failed", zap.Error(err))
		return generatePolicy("user", "Deny", request.MethodArn, nil), nil
	}

	authContext := map[string]interface{}{
		"userId": authorized.UserID,
		"role":   authorized.Role,
	}
	//arn:aws:execute-api:{regionId}:{accountId}:{apiId}/{stage}/{httpVerb}/[{resource}/[{child-resources}]]
	arn := fmt.Sprintf("arn:aws:execute-api:%s:%s:%s/%s/%s",
		"*", // Region
		request.RequestContext.AccountID,
		request.RequestContext.APIID,
		request.RequestContext.Stage,
		"*", // HTTP Method
	)

	return generatePolicy(authorized.UserID, "Allow", arn, authContext), nil
}

// generatePolicy generates an IAM policy for the authorizer response
func generatePolicy(principalID, effect, resource string, context map[string]interface{}) events.APIGatewayCustomAuthorizerResponse {
	authResponse := events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: principalID,
	}

	if effect != "" && resource != "" {
		authResponse.PolicyDocument = events.APIGatewayCustomAuthorizerPolicy{
			Version: "2012-10-17",
			Statement: []events.IAMPolicyStatement{
				{
					Action:   []string{"execute-api:Invoke"},
					Effect:   effect,
					Resource: []string{resource},
				},
			},
		}
	}

	if context != nil {
		authResponse.Context = context
	}

	authResponse.UsageIdentifierKey = principalID

	return authResponse
}

// main is the entry point for the Lambda function
func main() {
	lambda.Start(handler)
}
