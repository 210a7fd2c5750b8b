package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth *service.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type loginRequest struct {
	EmployeeCode string `json:"employee_code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.EmployeeCode, c.ClientIP(), middleware.GetRequestID(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, gin.H{
		"tokens":   res.Tokens,
		"employee": res.Identity,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, pair)
}

func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Data: id})
}
