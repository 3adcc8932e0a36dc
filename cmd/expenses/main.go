package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/mfinch/myfinance-backend/internal/api/handlers"
	"github.com/mfinch/myfinance-backend/internal/api/middleware"
	envconfig "github.com/mfinch/myfinance-backend/internal/common/config"
	"github.com/mfinch/myfinance-backend/internal/domain/expense"
	"github.com/mfinch/myfinance-backend/internal/domain/receipt"
	dynamoClient "github.com/mfinch/myfinance-backend/internal/platform/dynamodb/client"
	dynamodbRepository "github.com/mfinch/myfinance-backend/internal/platform/dynamodb/repository"
	"github.com/mfinch/myfinance-backend/internal/platform/s3"
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

	// Initialize S3 client for receipt storage
	s3Client, err := s3.NewClient(context.Background(), config.AWSRegion)
	if err != nil {
		logger.Error("Failed to initialize S3 client", "error", err)
		os.Exit(1)
	}

	factory := dynamodbRepository.NewFactory(ddb, config, logger)

	receiptStore := s3.NewReceiptStore(s3Client, config.ReceiptBucketName, logger)
	reconciler := receipt.NewReconciler(
		receiptStore,
		config.ReceiptTempKeyPrefix,
		config.ReceiptKeyPrefix,
		config.ReceiptDeleteTags,
		logger,
	)

	expenseService := expense.NewService(
		factory.ExpenseRepository(),
		reconciler,
		factory.ReferenceChecker(),
		config.DeleteExpiresInSec,
		logger,
	)

	handler := handlers.NewExpenseHandler(expenseService, logger)

	// Middleware chain: recovery wraps everything, auth runs last so the
	// principal is available to the handler.
	recoveryMiddleware := middleware.NewRecoveryMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware()
	authMiddleware := middleware.NewAuthMiddleware()

	chain := recoveryMiddleware.Handle(
		loggingMiddleware.Handle(
			authMiddleware.Handle(handler.Handle),
		),
	)

	lambda.Start(func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return chain(ctx, logger, request)
	})
}
