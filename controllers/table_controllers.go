package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req dto.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	table, err := tc.Tables.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("New table created: %s (rate=%s)", table.Number, utils.FormatRupiah(table.HourlyRate))
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	table, err := tc.Tables.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// GetLiveTables is polled by the floor view; it also fires package alerts.
func (tc *TableController) GetLiveTables(c *gin.Context) {
	live, err := tc.Tables.Live(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Live tables", live)
}

func (tc *TableController) StartSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.StartSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	session, err := tc.Tables.Start(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Session started", session)
}

func (tc *TableController) PauseSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	session, err := tc.Tables.Pause(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session paused", session)
}

func (tc *TableController) ResumeSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	session, err := tc.Tables.Resume(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session resumed", session)
}

// StopSession is the checkout: it composes the bill and posts it.
func (tc *TableController) StopSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := tc.Tables.Checkout(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	message := "Checkout completed"
	if !result.Bill.Final {
		message = "Partial payment recorded"
	}
	utils.RespondJSON(c, http.StatusOK, message, result)
}

func (tc *TableController) TransferSession(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	session, err := tc.Tables.Transfer(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session transferred", session)
}

func (tc *TableController) MarkTableClean(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	table, err := tc.Tables.MarkClean(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table marked as clean", table)
}

func (tc *TableController) GetSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	live, err := tc.Tables.LiveForTable(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if live.Session == nil {
		respondServiceError(c, services.ErrSessionNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session detail", live)
}

func (tc *TableController) AddItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := tc.Tables.AddItem(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Item added", item)
}

func (tc *TableController) RemoveItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := idParam(c, "item_id")
	if !ok {
		return
	}
	if err := tc.Tables.RemoveItem(c.Request.Context(), id, itemID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", gin.H{"id": itemID})
}
