package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitRepository struct {
	db *gorm.DB
}

var _ visit.Repository = (*VisitRepository)(nil)

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) Create(ctx context.Context, v *visit.Visit) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		if name, ok := uniqueConstraint(err); ok && name == constraintActiveVisit {
			return visit.ErrActiveVisitExists
		}
		return fmt.Errorf("inserting visit: %w", err)
	}
	return nil
}

func (r *VisitRepository) GetByID(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	var v visit.Visit
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, visit.ErrVisitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting visit: %w", err)
	}
	return &v, nil
}

func (r *VisitRepository) List(ctx context.Context, f visit.Filter) ([]*visit.Visit, error) {
	tx := r.scoped(ctx, f)
	if f.Order == visit.AdmissionAsc {
		tx = tx.Order("admission_date ASC")
	} else {
		tx = tx.Order("admission_date DESC")
	}
	tx = tx.Order("created_at ASC")
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}

	var rows []*visit.Visit
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	return rows, nil
}

func (r *VisitRepository) Count(ctx context.Context, f visit.Filter) (int64, error) {
	var n int64
	if err := r.scoped(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting visits: %w", err)
	}
	return n, nil
}

func (r *VisitRepository) CountBySpecialty(ctx context.Context, f visit.Filter) (map[specialty.Specialty]int64, error) {
	var rows []struct {
		Specialty specialty.Specialty
		Total     int64
	}
	err := r.scoped(ctx, f).
		Select("specialty, COUNT(*) AS total").
		Group("specialty").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping visits by specialty: %w", err)
	}

	out := make(map[specialty.Specialty]int64, len(rows))
	for _, row := range rows {
		out[row.Specialty] = row.Total
	}
	return out, nil
}

func (r *VisitRepository) MarkDischarged(ctx context.Context, v *visit.Visit) (bool, error) {
	// UpdateColumns keeps updated_at as set by the caller's clock.
	res := r.db.WithContext(ctx).Model(&visit.Visit{}).
		Where("id = ? AND patient_status = ?", v.ID, visit.StatusActive).
		UpdateColumns(map[string]any{
			"patient_status": v.Status,
			"discharge_date": v.DischargedAt,
			"discharge_note": v.DischargeNote,
			"discharged_by":  v.DischargedBy,
			"updated_at":     v.UpdatedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("discharging visit: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// scoped translates f's predicates. The visibility rule is a disjunction, so
// it is grouped to stay correct next to the other AND terms.
func (r *VisitRepository) scoped(ctx context.Context, f visit.Filter) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&visit.Visit{})
	if f.MRN != "" {
		tx = tx.Where("mrn = ?", f.MRN)
	}
	if f.Specialty != "" {
		tx = tx.Where("specialty = ?", f.Specialty)
	}
	if f.Status != "" {
		tx = tx.Where("patient_status = ?", f.Status)
	}
	if f.VisibleSince != nil {
		tx = tx.Where(
			r.db.Where("patient_status = ?", visit.StatusActive).
				Or("patient_status = ? AND updated_at >= ?", visit.StatusDischarged, *f.VisibleSince),
		)
	}
	if f.AdmittedFrom != nil {
		tx = tx.Where("admission_date >= ?", *f.AdmittedFrom)
	}
	if f.AdmittedBefore != nil {
		tx = tx.Where("admission_date < ?", *f.AdmittedBefore)
	}
	return tx
}
