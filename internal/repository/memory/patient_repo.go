package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
)

type PatientRepository struct {
	s *Store
}

var _ patient.Repository = (*PatientRepository)(nil)

func (r *PatientRepository) Create(_ context.Context, p *patient.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[p.MRN]; ok {
		return patient.ErrPatientAlreadyExists
	}
	cp := *p
	r.s.patients[p.MRN] = &cp
	return nil
}

func (r *PatientRepository) GetByMRN(_ context.Context, mrn string) (*patient.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.patients[mrn]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PatientRepository) ListByMRNs(_ context.Context, mrns []string) (map[string]*patient.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]*patient.Patient, len(mrns))
	for _, mrn := range mrns {
		if p, ok := r.s.patients[mrn]; ok {
			cp := *p
			out[mrn] = &cp
		}
	}
	return out, nil
}

func (r *PatientRepository) Update(_ context.Context, p *patient.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[p.MRN]; !ok {
		return patient.ErrPatientNotFound
	}
	cp := *p
	r.s.patients[p.MRN] = &cp
	return nil
}

func (r *PatientRepository) List(_ context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(q.Search))
	var matched []*patient.Patient
	for _, p := range r.s.patients {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.MRN), search) {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].AdmissionDate.Equal(matched[j].AdmissionDate) {
			return matched[i].AdmissionDate.After(matched[j].AdmissionDate)
		}
		return matched[i].MRN < matched[j].MRN
	})

	total := len(matched)
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}

	return &patient.PagedPatients{
		Patients:   matched[start:end],
		TotalCount: int64(total),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: (total + q.PageSize - 1) / q.PageSize,
	}, nil
}

func (r *PatientRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.patients)), nil
}
