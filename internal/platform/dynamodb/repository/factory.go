package repository

import (
	"log/slog"

	"github.com/mfinch/myfinance-backend/internal/common/config"
	"github.com/mfinch/myfinance-backend/internal/domain/expense"
	"github.com/mfinch/myfinance-backend/internal/domain/user"
	"github.com/mfinch/myfinance-backend/internal/platform/dynamodb/client"
)

// Factory creates repository instances
type Factory struct {
	client client.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewFactory creates a new repository factory
func NewFactory(client client.Client, cfg *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// ExpenseRepository returns an implementation of the expense.Repository interface
func (f *Factory) ExpenseRepository() expense.Repository {
	return NewDynamoDBExpenseRepository(f.client, f.cfg.ExpenseTableName, f.cfg.OwnerStatusIndexName, f.logger)
}

// ReferenceChecker returns an implementation of the expense.ReferenceChecker interface
func (f *Factory) ReferenceChecker() expense.ReferenceChecker {
	return NewDynamoDBReferenceRepository(f.client, f.cfg.ConfigTypeTableName, f.cfg.PaymentAccountTableName, f.logger)
}

// UserRepository returns an implementation of the user.Repository interface
func (f *Factory) UserRepository() user.Repository {
	return NewDynamoDBUserRepository(f.client, f.cfg.UserTableName, f.cfg.UserEmailIndexName, f.logger)
}
