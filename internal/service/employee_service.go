package service

import (
	"context"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EmployeeService struct {
	repo  EmployeeRepository
	audit *AuditService
	log   *zap.Logger
}

func NewEmployeeService(repo EmployeeRepository, audit *AuditService, log *zap.Logger) *EmployeeService {
	return &EmployeeService{repo: repo, audit: audit, log: log}
}

type CreateEmployeeCommand struct {
	Code string
	Name string
	Role domain.Role // defaults to staff
}

// Create registers a new employee. Admin only.
func (s *EmployeeService) Create(ctx context.Context, id domain.Identity, cmd CreateEmployeeCommand) (*domain.Employee, error) {
	if !id.IsAdmin {
		return nil, ErrForbidden
	}

	var fields []string
	e := &domain.Employee{
		Code: domain.NormalizeEmployeeCode(cmd.Code),
		Name: strings.TrimSpace(cmd.Name),
		Role: cmd.Role,
	}
	if e.Role == "" {
		e.Role = domain.RoleStaff
	}
	if e.Code == "" {
		fields = append(fields, "employee_code is required")
	}
	if e.Name == "" {
		fields = append(fields, "employee_name is required")
	}
	if !e.Role.IsValid() {
		fields = append(fields, "role must be admin or staff")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, storeErr("create employee", err, domain.ErrEmployeeCodeTaken)
	}

	s.audit.Record(ctx, id, domain.ActionCreate, "employee", e.ID.String(), map[string]string{
		"employee_code": e.Code,
		"role":          string(e.Role),
	})
	s.log.Info("employee created",
		zap.String("employee_code", e.Code),
		zap.String("role", string(e.Role)),
		zap.String("by", id.EmployeeCode),
	)
	return e, nil
}

// List returns all employees ordered by name. Admin only.
func (s *EmployeeService) List(ctx context.Context, id domain.Identity) ([]*domain.Employee, error) {
	if !id.IsAdmin {
		return nil, ErrForbidden
	}
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list employees", err)
	}
	return out, nil
}

// SetRole changes an employee's role. Admins cannot demote themselves so the
// ward always keeps at least the acting admin.
func (s *EmployeeService) SetRole(ctx context.Context, id domain.Identity, employeeID uuid.UUID, role domain.Role) (*domain.Employee, error) {
	if !id.IsAdmin {
		return nil, ErrForbidden
	}
	if !role.IsValid() {
		return nil, &ValidationError{Fields: []string{"role must be admin or staff"}}
	}
	if employeeID == id.EmployeeID && role != domain.RoleAdmin {
		return nil, &ValidationError{Fields: []string{"cannot remove your own admin role"}}
	}

	if err := s.repo.UpdateRole(ctx, employeeID, role); err != nil {
		return nil, storeErr("update employee role", err, domain.ErrEmployeeNotFound)
	}
	e, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, storeErr("get employee", err, domain.ErrEmployeeNotFound)
	}

	s.audit.Record(ctx, id, domain.ActionUpdate, "employee", employeeID.String(), map[string]string{"role": string(role)})
	return e, nil
}

// Delete removes an employee. Admin only; self-deletion is refused.
func (s *EmployeeService) Delete(ctx context.Context, id domain.Identity, employeeID uuid.UUID) error {
	if !id.IsAdmin {
		return ErrForbidden
	}
	if employeeID == id.EmployeeID {
		return &ValidationError{Fields: []string{"cannot delete your own account"}}
	}
	if err := s.repo.Delete(ctx, employeeID); err != nil {
		return storeErr("delete employee", err, domain.ErrEmployeeNotFound)
	}
	s.audit.Record(ctx, id, domain.ActionDelete, "employee", employeeID.String(), nil)
	return nil
}
