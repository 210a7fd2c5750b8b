package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	_ = c.Error(err)

	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, visit.ErrVisitNotFound),
		errors.Is(err, note.ErrNoteNotFound),
		errors.Is(err, domain.ErrEmployeeNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, visit.ErrAlreadyDischarged):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "STALE_STATE",
		})

	case errors.Is(err, visit.ErrActiveVisitExists),
		errors.Is(err, domain.ErrEmployeeCodeTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	default:
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

// identity returns the authenticated employee. Routes using it sit behind
// middleware.Authenticate, so a miss is a wiring bug.
func identity(c *gin.Context) (domain.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	return id, ok
}
