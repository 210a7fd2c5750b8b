package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrEmployeeCodeTaken = errors.New("employee code is already in use")
	ErrInvalidRole       = errors.New("invalid role")
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// Employee is a member of staff who can log in with their employee code.
type Employee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Code string `gorm:"column:employee_code;type:varchar(50);uniqueIndex;not null"`
	Name string `gorm:"column:employee_name;type:varchar(200);not null"`
	Role Role   `gorm:"column:role;type:varchar(20);not null;default:'staff'"`

	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func (Employee) TableName() string {
	return "users"
}

func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

// NormalizeEmployeeCode is applied on both write and lookup so codes match case-insensitively.
func NormalizeEmployeeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	EmployeeCode string `gorm:"column:employee_code;type:varchar(50);not null;index"`
	EmployeeName string `gorm:"column:employee_name;type:varchar(200)"`
	IPAddress    string `gorm:"column:ip_address;type:varchar(45)"`

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(64);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`
	Changes   string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

// Identity is the acting employee for a request. It is passed explicitly to
// every service call that needs attribution or the admin capability.
type Identity struct {
	EmployeeID   uuid.UUID `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin"`
	IPAddress    string    `json:"-"`
	RequestID    string    `json:"-"`
}

func IdentityFor(e *Employee) Identity {
	return Identity{
		EmployeeID:   e.ID,
		EmployeeCode: e.Code,
		Name:         e.Name,
		IsAdmin:      e.IsAdmin(),
	}
}
