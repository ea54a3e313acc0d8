package cli

import (
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

func newCreateCmd(open Opener) *cobra.Command {
	var title, txType, value, category string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a single transaction",
		Long: `Record an income or outcome transaction. An outcome larger than the
current balance is rejected. The category is created if it does not exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := decimal.NewFromString(value)
			if err != nil {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "value must be a decimal number")
			}

			return run(open, func(svc *services.Services) error {
				transaction, err := svc.Transactions.CreateTransaction(cmd.Context(), services.CreateTransactionInput{
					Title:    title,
					Type:     txType,
					Value:    amount,
					Category: category,
				})
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"transaction": transaction})
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Transaction title")
	cmd.Flags().StringVar(&txType, "type", "", "Transaction type (income or outcome)")
	cmd.Flags().StringVar(&value, "value", "", "Transaction value")
	cmd.Flags().StringVar(&category, "category", "", "Category title")
	for _, name := range []string{"title", "type", "value", "category"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// importOutput is printed after a committed import.
type importOutput struct {
	*services.ImportResult
	Warning string `json:"warning,omitempty"`
}

func newImportCmd(open Opener) *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a CSV file",
		Long: `Import transactions from a CSV file with the columns title, type, value,
category. The first line is a header. Rows missing a title, type or value are
skipped. A malformed row aborts the import and nothing is written. The file is
removed after a successful import unless --keep is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			return run(open, func(svc *services.Services) error {
				var (
					result *services.ImportResult
					err    error
				)
				if keep {
					result, err = importKeeping(cmd, svc.Imports, path)
				} else {
					result, err = svc.Imports.ImportFile(cmd.Context(), path)
				}

				out := importOutput{ImportResult: result}
				if err != nil {
					if result == nil || !errors.Is(err, apperrors.ErrCleanup) {
						return err
					}
					logger.Get().Warnw("imported file could not be removed", "path", path, "error", err)
					out.Warning = apperrors.ErrCleanup.Message
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}

	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the file after importing")
	return cmd
}

func importKeeping(cmd *cobra.Command, imports services.ImportServicer, path string) (*services.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.WrapWithMessage(apperrors.ErrInvalidInput, "import file not found", err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	defer f.Close()

	return imports.Import(cmd.Context(), f)
}

func newBalanceCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Print the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(open, func(svc *services.Services) error {
				balance, err := svc.Transactions.GetBalance(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), balance)
			})
		},
	}
}

func newListCmd(open Opener) *cobra.Command {
	var (
		page       pagination.PageRequest
		txType     string
		categoryID string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first, with the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter store.TransactionFilter
			if txType != "" {
				t, ok := models.ParseTransactionType(txType)
				if !ok {
					return apperrors.ErrInvalidTransactionType
				}
				filter.Type = &t
			}
			if categoryID != "" {
				id, err := uuid.Parse(categoryID)
				if err != nil {
					return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category-id")
				}
				s := id.String()
				filter.CategoryID = &s
			}

			return run(open, func(svc *services.Services) error {
				list, err := svc.Transactions.ListTransactions(cmd.Context(), page, filter)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), list)
			})
		},
	}

	cmd.Flags().IntVar(&page.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&page.PageSize, "page-size", pagination.DefaultPageSize, "Items per page (max 100)")
	cmd.Flags().StringVar(&txType, "type", "", "Only list transactions of this type (income or outcome)")
	cmd.Flags().StringVar(&categoryID, "category-id", "", "Only list transactions in this category")
	return cmd
}
