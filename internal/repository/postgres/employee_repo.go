package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return domain.ErrEmployeeCodeTaken
		}
		return fmt.Errorf("inserting employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *EmployeeRepository) GetByCode(ctx context.Context, code string) (*domain.Employee, error) {
	return r.first(ctx, "employee_code = ?", code)
}

func (r *EmployeeRepository) first(ctx context.Context, query string, arg any) (*domain.Employee, error) {
	var e domain.Employee
	err := r.db.WithContext(ctx).Where(query, arg).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting employee: %w", err)
	}
	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*domain.Employee, error) {
	var rows []*domain.Employee
	if err := r.db.WithContext(ctx).Order("employee_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	return rows, nil
}

func (r *EmployeeRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	res := r.db.WithContext(ctx).Model(&domain.Employee{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("updating employee role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Employee{})
	if res.Error != nil {
		return fmt.Errorf("deleting employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.Employee{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("recording login: %w", err)
	}
	return nil
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	// jsonb rejects the empty string.
	if entry.Changes == "" {
		entry.Changes = "{}"
	}
	return r.db.WithContext(ctx).Create(entry).Error
}
