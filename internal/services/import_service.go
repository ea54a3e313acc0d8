package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"fintrack/internal/csvimport"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/store"
)

// importService handles bulk CSV imports.
type importService struct {
	repo           store.Repository
	audit          AuditServicer
	batchSize      int
	delimiter      rune
	enforceBalance bool
}

// ImportOption configures the import service.
type ImportOption func(*importService)

// WithImportBatchSize sets how many rows are read and written per batch.
func WithImportBatchSize(n int) ImportOption {
	return func(s *importService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithDelimiter sets the field delimiter of imported files.
func WithDelimiter(r rune) ImportOption {
	return func(s *importService) {
		if r != 0 {
			s.delimiter = r
		}
	}
}

// WithBalanceCheck makes imports fail with INSUFFICIENT_BALANCE at the first
// outcome that would take the running balance below zero.
func WithBalanceCheck(enabled bool) ImportOption {
	return func(s *importService) { s.enforceBalance = enabled }
}

// NewImportService creates a new ImportServicer.
func NewImportService(repo store.Repository, audit AuditServicer, opts ...ImportOption) ImportServicer {
	s := &importService{
		repo:      repo,
		audit:     audit,
		batchSize: 500,
		delimiter: ',',
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportFile imports the CSV file at path and removes it once the import has
// committed. If removal fails the committed result is returned together with
// a CLEANUP_ERROR.
func (s *importService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.WrapWithMessage(apperrors.ErrInvalidInput, "import file not found", err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result, err := s.Import(ctx, f)
	closeErr := f.Close()
	if err != nil {
		return nil, err
	}

	if err := errors.Join(closeErr, os.Remove(path)); err != nil {
		logger.Get().Warnw("imported file could not be removed", "path", path, "error", err)
		return result, apperrors.Wrap(apperrors.ErrCleanup, err)
	}
	return result, nil
}

// Import reads transactions from r and persists them in a single unit of
// work. Rows missing a title, type or value are skipped. A malformed row
// aborts the import and nothing is written.
func (s *importService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csvimport.NewReader(r,
		csvimport.WithDelimiter(s.delimiter),
		csvimport.WithBatchSize(s.batchSize),
	)

	result := &ImportResult{Transactions: []models.Transaction{}}
	err := s.repo.Do(ctx, func(tx store.Stores) error {
		var running decimal.Decimal
		if s.enforceBalance {
			balance, err := tx.Transactions.Balance(ctx)
			if err != nil {
				return err
			}
			running = balance.Total
		}

		resolved := make(map[string]*models.Category)
		for {
			batch, err := reader.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return parseFailure(err)
			}

			created, err := resolveCategories(ctx, tx.Categories, batch, resolved)
			if err != nil {
				return err
			}
			result.CategoriesCreated += created

			transactions := make([]models.Transaction, 0, len(batch))
			for _, rec := range batch {
				transaction := models.Transaction{
					Title:      rec.Title,
					Type:       rec.Type,
					Value:      rec.Value.Round(2),
					CategoryID: resolved[rec.Category].ID,
					Category:   resolved[rec.Category],
				}
				if s.enforceBalance {
					if transaction.Type == models.TransactionTypeOutcome && transaction.Value.GreaterThan(running) {
						return apperrors.WithMessage(apperrors.ErrInsufficientBalance,
							fmt.Sprintf("line %d: outcome %s exceeds balance %s", rec.Line, transaction.Value, running))
					}
					running = running.Add(transaction.Signed())
				}
				transactions = append(transactions, transaction)
			}

			if err := tx.Transactions.CreateBatch(ctx, transactions); err != nil {
				return err
			}
			result.Transactions = append(result.Transactions, transactions...)
		}

		result.Imported = len(result.Transactions)
		result.Skipped = reader.Skipped()
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("import committed",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"categories_created", result.CategoriesCreated,
	)
	s.audit.Log(ctx, AuditActionImport, "transaction", "", map[string]any{
		"imported":           result.Imported,
		"skipped":            result.Skipped,
		"categories_created": result.CategoriesCreated,
	})
	return result, nil
}

// resolveCategories makes sure every category named in batch is present in
// resolved, querying the store once for unknown titles and bulk-creating the
// ones that do not exist yet. It returns the number of categories created.
func resolveCategories(ctx context.Context, categories store.CategoryStore, batch []csvimport.Record, resolved map[string]*models.Category) (int, error) {
	var pending []string
	seen := make(map[string]struct{})
	for _, rec := range batch {
		if _, ok := resolved[rec.Category]; ok {
			continue
		}
		if _, ok := seen[rec.Category]; ok {
			continue
		}
		seen[rec.Category] = struct{}{}
		pending = append(pending, rec.Category)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	existing, err := categories.FindByTitles(ctx, pending)
	if err != nil {
		return 0, err
	}
	for i := range existing {
		resolved[existing[i].Title] = &existing[i]
	}

	var missing []models.Category
	for _, title := range pending {
		if _, ok := resolved[title]; !ok {
			missing = append(missing, models.Category{Title: title})
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	stored, err := categories.CreateBatch(ctx, missing)
	if err != nil {
		return 0, err
	}
	for i := range stored {
		resolved[stored[i].Title] = &stored[i]
	}

	for _, title := range pending {
		if _, ok := resolved[title]; !ok {
			return 0, apperrors.WithMessage(apperrors.ErrStore, fmt.Sprintf("category %q could not be resolved", title))
		}
	}
	return len(missing), nil
}

func parseFailure(err error) error {
	var perr *csvimport.ParseError
	if errors.As(err, &perr) {
		return apperrors.WrapWithMessage(apperrors.ErrParse, perr.Error(), err)
	}
	return apperrors.Wrap(apperrors.ErrParse, err)
}
