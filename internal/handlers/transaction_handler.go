package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Value is a pointer so that an omitted or null value is told apart from 0.
type CreateTransactionRequest struct {
	Title    string           `json:"title" binding:"required,max=255" example:"Groceries"`
	Type     string           `json:"type" binding:"required" example:"outcome"`
	Value    *decimal.Decimal `json:"value" swaggertype:"number" example:"50"`
	Category string           `json:"category" binding:"required,max=255" example:"Food"`
}

// TransactionResponse wraps a single transaction.
type TransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or outcome. Outcomes larger than the current balance are rejected.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Concurrent update"
// @Failure     422 {object} ErrorResponse "Insufficient balance"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.Value == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "value is required"))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), services.CreateTransactionInput{
		Title:    req.Title,
		Type:     req.Type,
		Value:    *req.Value,
		Category: req.Category,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Transaction: transaction})
}

// GetTransactions handles the retrieval of transactions
// @Summary     List transactions
// @Description Get a paginated list of transactions, newest first, together with the current balance
// @Tags        transactions
// @Produce     json
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       type        query string false "Filter by transaction type (income, outcome)"
// @Param       category_id query string false "Filter by category ID"
// @Success     200 {object} services.TransactionList "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID handles the retrieval of a single transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Transaction: transaction})
}

// GetBalance handles the retrieval of the current balance
// @Summary     Get the balance
// @Description Income, outcome and total over all recorded transactions
// @Tags        transactions
// @Produce     json
// @Success     200 {object} models.Balance "Balance"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /balance [get]
func (h *TransactionHandler) GetBalance(c *gin.Context) {
	balance, err := h.transactionService.GetBalance(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

func parseTransactionFilter(c *gin.Context) (store.TransactionFilter, error) {
	var filter store.TransactionFilter

	if v := c.Query("type"); v != "" {
		txType, ok := models.ParseTransactionType(v)
		if !ok {
			return filter, apperrors.ErrInvalidTransactionType
		}
		filter.Type = &txType
	}

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id")
		}
		categoryID := id.String()
		filter.CategoryID = &categoryID
	}

	return filter, nil
}
