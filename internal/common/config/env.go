package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config represents the application configuration
// This struct contains all configuration parameters for the application
type Config struct {
	// AWS-specific configuration
	AWSRegion string

	// DynamoDB tables
	ExpenseTableName        string
	ConfigTypeTableName     string
	PaymentAccountTableName string
	UserTableName           string

	// Secondary index names
	OwnerStatusIndexName string
	UserEmailIndexName   string

	// Receipt storage
	ReceiptBucketName    string
	ReceiptTempKeyPrefix string
	ReceiptKeyPrefix     string
	ReceiptDeleteTags    map[string]string

	// Seconds a soft-deleted expense stays recoverable before the
	// table TTL sweep removes it.
	DeleteExpiresInSec int64

	// Auth configuration
	TokenSecretID    string
	TokenExpiryInSec int64

	// Environment info
	Environment string

	// Lambda detection flag (cached)
	isLambda bool
}

// LoadFromEnv loads the configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	// Required environment variables
	cfg.ExpenseTableName = os.Getenv("EXPENSES_TABLE_NAME")
	if cfg.ExpenseTableName == "" {
		return nil, errors.New("EXPENSES_TABLE_NAME environment variable is required")
	}

	cfg.OwnerStatusIndexName = os.Getenv("EXPENSE_USERID_STATUS_GSI_NAME")
	if cfg.OwnerStatusIndexName == "" {
		return nil, errors.New("EXPENSE_USERID_STATUS_GSI_NAME environment variable is required")
	}

	cfg.ReceiptBucketName = os.Getenv("EXPENSE_RECEIPTS_BUCKET_NAME")
	if cfg.ReceiptBucketName == "" {
		return nil, errors.New("EXPENSE_RECEIPTS_BUCKET_NAME environment variable is required")
	}

	// Sibling tables referenced by expense payloads. Optional for
	// lambdas that never touch them.
	cfg.ConfigTypeTableName = os.Getenv("CONFIG_TYPE_TABLE_NAME")
	cfg.PaymentAccountTableName = os.Getenv("PAYMENT_ACCOUNT_TABLE_NAME")
	cfg.UserTableName = os.Getenv("USER_TABLE_NAME")

	cfg.UserEmailIndexName = os.Getenv("USER_EMAIL_GSI_NAME")
	if cfg.UserEmailIndexName == "" {
		cfg.UserEmailIndexName = "emailIdIndex"
	}

	cfg.ReceiptTempKeyPrefix = os.Getenv("RECEIPT_TEMP_KEY_PREFIX")
	if cfg.ReceiptTempKeyPrefix == "" {
		cfg.ReceiptTempKeyPrefix = "temp/receipt"
	}

	cfg.ReceiptKeyPrefix = os.Getenv("RECEIPT_KEY_PREFIX")
	if cfg.ReceiptKeyPrefix == "" {
		cfg.ReceiptKeyPrefix = "receipt"
	}

	if raw := os.Getenv("RECEIPT_S3_TAGS_TO_ADD"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.ReceiptDeleteTags); err != nil {
			return nil, fmt.Errorf("RECEIPT_S3_TAGS_TO_ADD must be a JSON object: %w", err)
		}
	}
	if len(cfg.ReceiptDeleteTags) == 0 {
		cfg.ReceiptDeleteTags = map[string]string{"status": "deleted"}
	}

	var err error
	cfg.DeleteExpiresInSec, err = int64FromEnv("DELETE_EXPENSE_EXPIRES_IN_SEC", 10*24*60*60)
	if err != nil {
		return nil, err
	}

	cfg.TokenSecretID = os.Getenv("TOKEN_SECRET_ID")
	cfg.TokenExpiryInSec, err = int64FromEnv("TOKEN_EXPIRY_IN_SEC", 60*60)
	if err != nil {
		return nil, err
	}

	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "dev" // Default to dev environment
	}

	cfg.AWSRegion = os.Getenv("AWS_REGION")
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = "us-east-1"
	}

	// Check if running in Lambda
	cfg.isLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	return cfg, nil
}

func int64FromEnv(name string, fallback int64) (int64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return v, nil
}

func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsLambda returns true if the application is running in AWS Lambda
func (c *Config) IsLambda() bool {
	return c.isLambda
}
