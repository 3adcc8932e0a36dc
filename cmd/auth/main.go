package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/mfinch/myfinance-backend/internal/api/handlers"
	"github.com/mfinch/myfinance-backend/internal/api/middleware"
	envconfig "github.com/mfinch/myfinance-backend/internal/common/config"
	"github.com/mfinch/myfinance-backend/internal/domain/user"
	"github.com/mfinch/myfinance-backend/internal/platform/awssecrets"
	dynamoClient "github.com/mfinch/myfinance-backend/internal/platform/dynamodb/client"
	dynamodbRepository "github.com/mfinch/myfinance-backend/internal/platform/dynamodb/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	config, err := envconfig.LoadFromEnv()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize DynamoDB client
	ddb, err := dynamoClient.NewDynamoDBClient(context.Background(), config.AWSRegion)
	if err != nil {
		logger.Error("Failed to initialize DynamoDB client", "error", err)
		os.Exit(1)
	}

	secrets, err := awssecrets.New(context.Background(), config.AWSRegion, logger)
	if err != nil {
		logger.Error("Failed to initialize secrets store", "error", err)
		os.Exit(1)
	}

	factory := dynamodbRepository.NewFactory(ddb, config, logger)

	userService := user.NewService(
		factory.UserRepository(),
		secrets,
		config.TokenSecretID,
		time.Duration(config.TokenExpiryInSec)*time.Second,
		logger,
	)

	handler := handlers.NewAuthHandler(userService, logger)

	// No auth middleware here: login is the unauthenticated entry point.
	recoveryMiddleware := middleware.NewRecoveryMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware()

	chain := recoveryMiddleware.Handle(loggingMiddleware.Handle(handler.Handle))

	lambda.Start(func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return chain(ctx, logger, request)
	})
}
