package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yeremiapane/billiard-pos/middlewares"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

var errInternal = errors.New("internal server error")

// respondServiceError maps a service error onto the response envelope.
// Anything that is not a domain error is logged and hidden behind a 500.
func respondServiceError(c *gin.Context, err error) {
	var de *services.DomainError
	if errors.As(err, &de) {
		utils.RespondErrorCode(c, de.Status, de.Code, de)
		return
	}
	utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	utils.RespondErrorCode(c, http.StatusInternalServerError, "INTERNAL", errInternal)
}

// respondBindError reports a request that failed binding or validation.
func respondBindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		err = fmt.Errorf("field %s failed on %s", fe.Field(), fe.Tag())
	}
	utils.RespondErrorCode(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
}

// idParam parses a positive numeric path parameter, replying 400 otherwise.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.RespondErrorCode(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

func currentUserID(c *gin.Context) uint {
	id, _, _ := middlewares.CurrentUser(c)
	return id
}
