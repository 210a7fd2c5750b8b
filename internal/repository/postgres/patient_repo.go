package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

var _ patient.Repository = (*PatientRepository)(nil)

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return patient.ErrPatientAlreadyExists
		}
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByMRN(ctx context.Context, mrn string) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.WithContext(ctx).Where("mrn = ?", mrn).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, patient.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) ListByMRNs(ctx context.Context, mrns []string) (map[string]*patient.Patient, error) {
	out := make(map[string]*patient.Patient, len(mrns))
	if len(mrns) == 0 {
		return out, nil
	}
	var rows []*patient.Patient
	if err := r.db.WithContext(ctx).Where("mrn IN ?", mrns).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("selecting patients: %w", err)
	}
	for _, p := range rows {
		out[p.MRN] = p
	}
	return out, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	res := r.db.WithContext(ctx).Model(&patient.Patient{}).
		Where("mrn = ?", p.MRN).
		Updates(map[string]any{
			"patient_name":    p.Name,
			"age":             p.Age,
			"gender":          p.Gender,
			"assigned_doctor": p.AssignedDoctor,
			"diagnosis":       p.Diagnosis,
		})
	if res.Error != nil {
		return fmt.Errorf("updating patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	tx := r.db.WithContext(ctx).Model(&patient.Patient{})
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("LOWER(patient_name) LIKE ? OR LOWER(mrn) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}

	var rows []*patient.Patient
	err := tx.Order("admission_date DESC").Order("mrn").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	return &patient.PagedPatients{
		Patients:   rows,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: int((total + int64(q.PageSize) - 1) / int64(q.PageSize)),
	}, nil
}

func (r *PatientRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&patient.Patient{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting patients: %w", err)
	}
	return n, nil
}
