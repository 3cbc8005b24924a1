package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type ShiftController struct {
	Shifts *services.ShiftService
}

func NewShiftController(shifts *services.ShiftService) *ShiftController {
	return &ShiftController{Shifts: shifts}
}

func (sc *ShiftController) OpenShift(c *gin.Context) {
	var req dto.OpenShiftRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	shift, err := sc.Shifts.Open(c.Request.Context(), currentUserID(c), req.OpeningCash)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Shift %s opened by user %d", shift.Reference, shift.UserID)
	utils.RespondJSON(c, http.StatusCreated, "Shift opened", shift)
}

func (sc *ShiftController) CurrentShift(c *gin.Context) {
	shift, err := sc.Shifts.Current(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current shift", shift)
}

// CloseShift records the counted drawer cash and returns the Z-report.
func (sc *ShiftController) CloseShift(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	report, err := sc.Shifts.Close(c.Request.Context(), id, req.CountedCash)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift closed", report)
}

func (sc *ShiftController) GetZReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	report, err := sc.Shifts.ZReport(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Z-report", report)
}
