package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{Reservations: reservations}
}

func (rc *ReservationController) GetReservations(c *gin.Context) {
	var filter dto.ReservationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}
	reservations, err := rc.Reservations.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := rc.Reservations.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Reservation %d created for %s (%s %s)", res.ID, res.CustomerName, res.BookingDate, res.BookingTime)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", res)
}

func (rc *ReservationController) ConfirmReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := rc.Reservations.Confirm(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation confirmed", res)
}

func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.CancelReservationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	res, err := rc.Reservations.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", res)
}

// CheckReservations runs the no-show sweep and returns the alerts.
func (rc *ReservationController) CheckReservations(c *gin.Context) {
	result, err := rc.Reservations.Check(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation check completed", result)
}

func (rc *ReservationController) ConfirmStart(c *gin.Context) {
	var req dto.ConfirmStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	session, err := rc.Reservations.ConfirmStart(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation started", session)
}
