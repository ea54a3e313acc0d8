package integration

import (
	"fmt"
	"net/http"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestTransactionFlow_BalanceGuard(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/transactions",
		`{"title":"Salary","type":"income","value":100,"category":"Job"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// An outcome above the balance is rejected without side effects.
	rec = app.request("POST", "/api/v1/transactions",
		`{"title":"Laptop","type":"outcome","value":150,"category":"Electronics"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "INSUFFICIENT_BALANCE" {
		t.Errorf("expected INSUFFICIENT_BALANCE, got %s", code)
	}
	if total := app.balanceTotal(t); total != "100" {
		t.Errorf("expected balance 100, got %s", total)
	}

	rec = app.request("GET", "/api/v1/categories", "")
	if n := parseJSON(t, rec)["total_items"].(float64); n != 1 {
		t.Errorf("expected only the Job category, got %.0f", n)
	}

	// An outcome within the balance goes through and creates its category.
	rec = app.request("POST", "/api/v1/transactions",
		`{"title":"Groceries","type":"outcome","value":"50","category":"Food"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
	category := tx["category"].(map[string]interface{})
	if category["title"] != "Food" {
		t.Errorf("expected category Food, got %v", category["title"])
	}
	if total := app.balanceTotal(t); total != "50" {
		t.Errorf("expected balance 50, got %s", total)
	}

	// The transaction and its category are retrievable.
	rec = app.request("GET", fmt.Sprintf("/api/v1/transactions/%s", tx["id"]), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/categories/%s", category["id"]), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransactionFlow_ListWithFilters(t *testing.T) {
	app := setupApp(t)

	for _, body := range []string{
		`{"title":"Salary","type":"income","value":1000,"category":"Job"}`,
		`{"title":"Rent","type":"outcome","value":400,"category":"Housing"}`,
		`{"title":"Bonus","type":"income","value":200,"category":"Job"}`,
	} {
		if rec := app.request("POST", "/api/v1/transactions", body); rec.Code != http.StatusCreated {
			t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := app.request("GET", "/api/v1/transactions?type=income", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"].(float64) != 2 {
		t.Errorf("expected 2 income transactions, got %v", result["total_items"])
	}
	balance := result["balance"].(map[string]interface{})
	if balance["total"] != "800" {
		t.Errorf("expected balance 800, got %v", balance["total"])
	}

	rec = app.request("GET", "/api/v1/transactions?page=1&page_size=1", "")
	result = parseJSON(t, rec)
	if len(result["data"].([]interface{})) != 1 || result["total_pages"].(float64) != 3 {
		t.Errorf("unexpected page: %s", rec.Body.String())
	}
}

func TestTransactionFlow_Errors(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/transactions",
		`{"title":"x","type":"expense","value":1,"category":"c"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_TRANSACTION_TYPE" {
		t.Errorf("expected INVALID_TRANSACTION_TYPE, got %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/transactions",
		`{"title":"x","type":"income","value":-1,"category":"c"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %d %s", rec.Code, rec.Body.String())
	}

	for _, body := range []string{
		`{"title":"Lunch","type":"outcome","category":"Food"}`,
		`{"title":"Lunch","type":"outcome","value":null,"category":"Food"}`,
		`{"title":"Lottery","type":"income","value":"123456789012345.67","category":"Luck"}`,
	} {
		rec = app.request("POST", "/api/v1/transactions", body)
		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_INPUT" {
			t.Errorf("expected INVALID_INPUT for %s, got %d %s", body, rec.Code, rec.Body.String())
		}
	}
	if n := testutil.Count(t, app.DB, &models.Transaction{}); n != 0 {
		t.Errorf("expected no transactions persisted, got %d", n)
	}

	rec = app.request("GET", "/api/v1/transactions/0190a8e4-0000-7000-8000-000000000000", "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "TRANSACTION_NOT_FOUND" {
		t.Errorf("expected TRANSACTION_NOT_FOUND, got %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/unknown", "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %d %s", rec.Code, rec.Body.String())
	}
}
