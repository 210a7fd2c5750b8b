package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid employee code")

type EmployeeRepository interface {
	Create(ctx context.Context, e *domain.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	GetByCode(ctx context.Context, code string) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type AuthService struct {
	employees  EmployeeRepository
	jwtManager *auth.JWTManager
	audit      *AuditService
	log        *zap.Logger
	now        Clock
}

func NewAuthService(employees EmployeeRepository, jwtManager *auth.JWTManager, audit *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{employees: employees, jwtManager: jwtManager, audit: audit, log: log, now: systemClock}
}

type LoginResult struct {
	Tokens   *domain.TokenPair
	Identity domain.Identity
}

// Login signs an employee in by code alone; the ward has no passwords.
func (s *AuthService) Login(ctx context.Context, code, ip, requestID string) (*LoginResult, error) {
	code = domain.NormalizeEmployeeCode(code)
	if code == "" {
		return nil, &ValidationError{Fields: []string{"employee_code is required"}}
	}

	emp, err := s.employees.GetByCode(ctx, code)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		s.log.Warn("failed login attempt",
			zap.String("employee_code", code),
			zap.String("ip", ip),
		)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("get employee", err)
	}

	id := domain.IdentityFor(emp)
	pair, err := s.jwtManager.GenerateTokenPair(id)
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	if err := s.employees.TouchLogin(ctx, emp.ID, s.now()); err != nil {
		s.log.Warn("recording last login", zap.Error(err))
	}

	id.IPAddress, id.RequestID = ip, requestID
	s.audit.Record(ctx, id, domain.ActionLogin, "session", emp.ID.String(), nil)
	s.log.Info("employee logged in",
		zap.String("employee_code", emp.Code),
		zap.String("ip", ip),
	)

	return &LoginResult{Tokens: pair, Identity: id}, nil
}

// RefreshToken issues a new pair given a valid refresh token. The employee is
// re-read so role changes and deletions take effect.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	emp, err := s.employees.GetByID(ctx, claims.EmployeeID)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("get employee", err)
	}

	return s.jwtManager.GenerateTokenPair(domain.IdentityFor(emp))
}

// IsAdmin reads the employee's current role. Deleted employees are not admins.
func (s *AuthService) IsAdmin(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("get employee", err)
	}
	return emp.IsAdmin(), nil
}
