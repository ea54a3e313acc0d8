package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fintrack/internal/config"
	"fintrack/internal/handlers"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/services"
	"fintrack/internal/store"
	"fintrack/internal/testutil"
	"fintrack/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB        *gorm.DB
	Router    *gin.Engine
	UploadDir string
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{
		UploadDir:       t.TempDir(),
		MaxUploadBytes:  1 << 20,
		ImportBatchSize: 2,
		CSVDelimiter:    ',',
	}
	svc := services.New(store.New(db, store.WithBatchSize(cfg.ImportBatchSize)), cfg)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())
	router.NoRoute(middleware.NotFound)

	handlers.RegisterRoutes(router.Group("/api/v1"),
		handlers.NewTransactionHandler(svc.Transactions),
		handlers.NewImportHandler(svc.Imports, cfg.UploadDir, cfg.MaxUploadBytes),
		handlers.NewCategoryHandler(svc.Categories),
	)

	return &testApp{DB: db, Router: router, UploadDir: cfg.UploadDir}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// upload posts content as a CSV file to the import endpoint.
func (app *testApp) upload(t *testing.T, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "transactions.csv")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/transactions/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// balanceTotal fetches the current balance total.
func (app *testApp) balanceTotal(t *testing.T) string {
	t.Helper()
	rec := app.request("GET", "/api/v1/balance", "")
	if rec.Code != 200 {
		t.Fatalf("balance failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["total"].(string)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	return errObj["code"].(string)
}
