// Package cli implements the fintrack command line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fintrack/internal/config"
	"fintrack/internal/database"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// Opener provides the services a command runs against and a function
// releasing them.
type Opener func() (*services.Services, func() error, error)

// NewRootCmd builds the command tree. Every subcommand obtains its services
// from open.
func NewRootCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fintrack",
		Short: "Record transactions and import them from CSV files.",
		Long: `fintrack records income and outcome transactions, refuses outcomes
that would make the balance negative and bulk-imports transactions from CSV
files with the columns title, type, value, category.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newCreateCmd(open),
		newImportCmd(open),
		newBalanceCmd(open),
		newListCmd(open),
	)
	return cmd
}

// OpenDatabase is the Opener used by the fintrack binary. It loads the
// configuration from the environment and migrates the database.
func OpenDatabase() (*services.Services, func() error, error) {
	appConfig, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.Migrate(); err != nil {
		_ = dbManager.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	repo := store.New(dbManager.DB(),
		store.WithTxOptions(dbManager.TxOptions()),
		store.WithBatchSize(appConfig.ImportBatchSize),
	)
	return services.New(repo, appConfig), dbManager.Close, nil
}

// run opens the services, calls fn and releases them.
func run(open Opener, fn func(svc *services.Services) error) error {
	svc, closeFn, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Get().Warnw("failed to close database", "error", err)
		}
	}()
	return fn(svc)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ErrorBody renders err the way the HTTP API does.
func ErrorBody(err error) map[string]map[string]string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.WithMessage(apperrors.ErrInternalServer, err.Error())
	}
	return map[string]map[string]string{
		"error": {"code": appErr.Code, "message": appErr.Message},
	}
}

// WriteError prints err as JSON to w.
func WriteError(w io.Writer, err error) {
	_ = writeJSON(w, ErrorBody(err))
}
