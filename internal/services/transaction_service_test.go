package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/store"
	"fintrack/internal/testutil"
)

func newTransactionService(db *gorm.DB) TransactionServicer {
	repo := store.New(db)
	return NewTransactionService(repo, NewAuditService(repo.Audit()))
}

func createInput(t *testing.T, title, txType, value, category string) CreateTransactionInput {
	t.Helper()
	return CreateTransactionInput{Title: title, Type: txType, Value: testutil.Dec(t, value), Category: category}
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("outcome_exceeding_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		testutil.SeedBalance(t, db, 100)
		categoriesBefore := testutil.Count(t, db, &models.Category{})

		_, err := svc.CreateTransaction(ctx, createInput(t, "Laptop", "outcome", "150", "Electronics"))
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")

		if n := testutil.Count(t, db, &models.Transaction{}); n != 1 {
			t.Errorf("expected 1 transaction, got %d", n)
		}
		if n := testutil.Count(t, db, &models.Category{}); n != categoriesBefore {
			t.Errorf("expected no new category, got %d categories (was %d)", n, categoriesBefore)
		}
		balance, err := svc.GetBalance(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, balance.Total, "100")
	})

	t.Run("outcome_within_balance_creates_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		testutil.SeedBalance(t, db, 100)

		tx, err := svc.CreateTransaction(ctx, createInput(t, "Groceries", "outcome", "50", "Food"))
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected transaction ID to be set")
		}
		if tx.Category == nil || tx.Category.Title != "Food" {
			t.Fatalf("expected category Food, got %+v", tx.Category)
		}
		if tx.CategoryID != tx.Category.ID {
			t.Errorf("category_id %q does not match category %q", tx.CategoryID, tx.Category.ID)
		}

		balance, err := svc.GetBalance(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, balance.Total, "50")
	})

	t.Run("outcome_equal_to_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		testutil.SeedBalance(t, db, 100)

		_, err := svc.CreateTransaction(ctx, createInput(t, "Everything", "outcome", "100", "Misc"))
		testutil.AssertNoError(t, err)

		balance, err := svc.GetBalance(ctx)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, balance.Total, "0")
	})

	t.Run("income_on_empty_store", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		tx, err := svc.CreateTransaction(ctx, createInput(t, "Salary", "income", "1000", "Job"))
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, tx.Value, "1000")
		if tx.Type != models.TransactionTypeIncome {
			t.Errorf("expected income, got %s", tx.Type)
		}
	})

	t.Run("reuses_existing_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		existing := testutil.CreateTestCategoryWithTitle(t, db, "Job")

		tx, err := svc.CreateTransaction(ctx, createInput(t, "Salary", "income", "1000", "Job"))
		testutil.AssertNoError(t, err)

		if tx.CategoryID != existing.ID {
			t.Errorf("expected category %s, got %s", existing.ID, tx.CategoryID)
		}
		if n := testutil.Count(t, db, &models.Category{}); n != 1 {
			t.Errorf("expected 1 category, got %d", n)
		}
	})

	t.Run("category_title_is_exact", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		testutil.CreateTestCategoryWithTitle(t, db, "food")

		_, err := svc.CreateTransaction(ctx, createInput(t, "Bread", "income", "3", "Food"))
		testutil.AssertNoError(t, err)

		if n := testutil.Count(t, db, &models.Category{}); n != 2 {
			t.Errorf("expected 2 categories, got %d", n)
		}
	})

	t.Run("trims_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		tx, err := svc.CreateTransaction(ctx, createInput(t, "  Salary ", " income ", "10", " Job "))
		testutil.AssertNoError(t, err)
		if tx.Title != "Salary" || tx.Category.Title != "Job" {
			t.Errorf("expected trimmed values, got title %q category %q", tx.Title, tx.Category.Title)
		}
	})

	t.Run("rounds_value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		tx, err := svc.CreateTransaction(ctx, createInput(t, "Interest", "income", "10.456", "Bank"))
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, tx.Value, "10.46")
	})

	t.Run("writes_audit_log", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		tx, err := svc.CreateTransaction(ctx, createInput(t, "Salary", "income", "10", "Job"))
		testutil.AssertNoError(t, err)

		var entry models.AuditLog
		if err := db.Where("resource_id = ?", tx.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected audit entry: %v", err)
		}
		if entry.Action != AuditActionCreateTransaction {
			t.Errorf("expected action %s, got %s", AuditActionCreateTransaction, entry.Action)
		}
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		tests := []struct {
			name  string
			input CreateTransactionInput
			code  string
		}{
			{"unknown_type", createInput(t, "x", "expense", "1", "c"), "INVALID_TRANSACTION_TYPE"},
			{"empty_type", createInput(t, "x", "", "1", "c"), "INVALID_TRANSACTION_TYPE"},
			{"blank_title", createInput(t, "   ", "income", "1", "c"), "INVALID_INPUT"},
			{"blank_category", createInput(t, "x", "income", "1", ""), "INVALID_INPUT"},
			{"negative_value", createInput(t, "x", "income", "-1", "c"), "INVALID_INPUT"},
			{"long_title", createInput(t, strings.Repeat("a", 256), "income", "1", "c"), "INVALID_INPUT"},
			{"value_too_large", createInput(t, "x", "income", "123456789012345.67", "c"), "INVALID_INPUT"},
			{"value_rounds_past_limit", createInput(t, "x", "income", "999999999999.995", "c"), "INVALID_INPUT"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateTransaction(ctx, tt.input)
				testutil.AssertAppError(t, err, tt.code)
			})
		}

		if n := testutil.Count(t, db, &models.Transaction{}); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("page_with_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		cat := testutil.CreateTestCategory(t, db)
		for i := 0; i < 3; i++ {
			testutil.CreateTestTransaction(t, db, cat.ID, models.TransactionTypeIncome, 10)
		}
		testutil.CreateTestTransaction(t, db, cat.ID, models.TransactionTypeOutcome, 5)

		list, err := svc.ListTransactions(ctx, pagination.PageRequest{Page: 1, PageSize: 2}, store.TransactionFilter{})
		testutil.AssertNoError(t, err)

		if len(list.Data) != 2 {
			t.Errorf("expected 2 items, got %d", len(list.Data))
		}
		if list.TotalItems != 4 || list.TotalPages != 2 {
			t.Errorf("expected 4 items over 2 pages, got %d over %d", list.TotalItems, list.TotalPages)
		}
		testutil.AssertDecimal(t, list.Balance.Total, "25")
	})

	t.Run("filter_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		cat := testutil.CreateTestCategory(t, db)
		testutil.CreateTestTransaction(t, db, cat.ID, models.TransactionTypeIncome, 10)
		testutil.CreateTestTransaction(t, db, cat.ID, models.TransactionTypeOutcome, 5)

		outcome := models.TransactionTypeOutcome
		list, err := svc.ListTransactions(ctx, pagination.PageRequest{}, store.TransactionFilter{Type: &outcome})
		testutil.AssertNoError(t, err)
		if list.TotalItems != 1 || list.Data[0].Type != outcome {
			t.Errorf("expected one outcome, got %+v", list.Data)
		}
	})

	t.Run("invalid_type_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		bogus := models.TransactionType("transfer")
		_, err := svc.ListTransactions(ctx, pagination.PageRequest{}, store.TransactionFilter{Type: &bogus})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})
}

func TestGetTransactionByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		cat := testutil.CreateTestCategory(t, db)
		created := testutil.CreateTestTransaction(t, db, cat.ID, models.TransactionTypeIncome, 10)

		tx, err := svc.GetTransactionByID(ctx, created.ID)
		testutil.AssertNoError(t, err)
		if tx.Category == nil || tx.Category.ID != cat.ID {
			t.Errorf("expected category preloaded, got %+v", tx.Category)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		_, err := svc.GetTransactionByID(ctx, "0190a8e4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("empty_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)

		_, err := svc.GetTransactionByID(ctx, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetBalance_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTransactionService(db)

	balance, err := svc.GetBalance(context.Background())
	testutil.AssertNoError(t, err)
	if !balance.Total.Equal(decimal.Zero) {
		t.Errorf("expected zero balance, got %s", balance.Total)
	}
}
