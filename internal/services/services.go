package services

import (
	"fintrack/internal/config"
	"fintrack/internal/store"
)

// Services bundles the service layer built on one repository.
type Services struct {
	Audit        AuditServicer
	Transactions TransactionServicer
	Imports      ImportServicer
	Categories   CategoryServicer
}

// New builds every service on repo using the import settings from cfg.
func New(repo store.Repository, cfg *config.Config) *Services {
	audit := NewAuditService(repo.Audit())
	return &Services{
		Audit:        audit,
		Transactions: NewTransactionService(repo, audit),
		Imports: NewImportService(repo, audit,
			WithImportBatchSize(cfg.ImportBatchSize),
			WithDelimiter(cfg.CSVDelimiter),
			WithBalanceCheck(cfg.ImportEnforceBalance),
		),
		Categories: NewCategoryService(repo.Categories()),
	}
}
