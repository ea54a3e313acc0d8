package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/services"
)

// ImportHandler handles CSV uploads.
type ImportHandler struct {
	importService  services.ImportServicer
	uploadDir      string
	maxUploadBytes int64
}

// NewImportHandler creates a new ImportHandler. Uploads are stored in
// uploadDir until imported and may not exceed maxUploadBytes.
func NewImportHandler(importService services.ImportServicer, uploadDir string, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		importService:  importService,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// ImportResponse is returned after a committed import.
type ImportResponse struct {
	*services.ImportResult
	Warning string `json:"warning,omitempty"`
}

// ImportTransactions handles a CSV upload
// @Summary     Import transactions
// @Description Upload a CSV file with the columns title, type, value, category. The first line is a header.
// @Description Rows missing a title, type or value are skipped. A malformed row aborts the whole import.
// @Tags        transactions
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "CSV file"
// @Success     201 {object} ImportResponse "Import committed"
// @Failure     400 {object} ErrorResponse "Missing file or parse error"
// @Failure     413 {object} ErrorResponse "File too large"
// @Failure     422 {object} ErrorResponse "Insufficient balance"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/import [post]
func (h *ImportHandler) ImportTransactions(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			respondWithError(c, apperrors.ErrPayloadTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(c, apperrors.ErrPayloadTooLarge)
			return
		}
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "file is required"))
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	tmp, err := os.CreateTemp(h.uploadDir, "import-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	path := tmp.Name()
	_ = tmp.Close()

	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		_ = os.Remove(path)
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	result, err := h.importService.ImportFile(c.Request.Context(), path)
	if err != nil {
		if result != nil && errors.Is(err, apperrors.ErrCleanup) {
			logger.Get().Warnw("upload left behind after import", "path", path, "error", err)
			c.JSON(http.StatusCreated, ImportResponse{ImportResult: result, Warning: apperrors.ErrCleanup.Message})
			return
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Get().Warnw("failed to remove rejected upload", "path", path, "error", rmErr)
		}
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ImportResponse{ImportResult: result})
}
