package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EmployeeHandler struct {
	employees *service.EmployeeService
	log       *zap.Logger
}

func NewEmployeeHandler(employees *service.EmployeeService, log *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, log: log}
}

type createEmployeeRequest struct {
	Code string      `json:"employee_code"`
	Name string      `json:"employee_name"`
	Role domain.Role `json:"role"`
}

type setRoleRequest struct {
	Role domain.Role `json:"role" binding:"required"`
}

func (h *EmployeeHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.employees.List(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	out := make([]employeeResponse, len(list))
	for i, e := range list {
		out[i] = toEmployeeResponse(e)
	}
	respondOK(c, out)
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req createEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.employees.Create(c.Request.Context(), id, service.CreateEmployeeCommand{
		Code: req.Code,
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, toEmployeeResponse(e))
}

func (h *EmployeeHandler) SetRole(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	employeeID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req setRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.employees.SetRole(c.Request.Context(), id, employeeID, req.Role)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, toEmployeeResponse(e))
}

func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	employeeID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.employees.Delete(c.Request.Context(), id, employeeID); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
