package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API handlers on the v1 group.
func RegisterRoutes(v1 *gin.RouterGroup, transactions *TransactionHandler, imports *ImportHandler, categories *CategoryHandler) {
	v1.GET("/balance", transactions.GetBalance)

	tx := v1.Group("/transactions")
	tx.POST("", transactions.CreateTransaction)
	tx.GET("", transactions.GetTransactions)
	tx.POST("/import", imports.ImportTransactions)
	tx.GET("/:id", transactions.GetTransactionByID)

	cat := v1.Group("/categories")
	cat.GET("", categories.GetCategories)
	cat.GET("/:id", categories.GetCategoryByID)
}
