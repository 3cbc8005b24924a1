package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type TransactionController struct {
	Transactions *services.TransactionService
}

func NewTransactionController(transactions *services.TransactionService) *TransactionController {
	return &TransactionController{Transactions: transactions}
}

func (tc *TransactionController) GetTransactions(c *gin.Context) {
	var filter dto.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}
	page, err := tc.Transactions.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of transactions", page)
}

func (tc *TransactionController) CreateTransaction(c *gin.Context) {
	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := tc.Transactions.Post(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Transaction posted", order)
}

func (tc *TransactionController) GetTransactionByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := tc.Transactions.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Transaction detail", order)
}
