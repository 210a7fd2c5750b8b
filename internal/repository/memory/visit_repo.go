package memory

import (
	"context"
	"sort"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/google/uuid"
)

type VisitRepository struct {
	s *Store
}

var _ visit.Repository = (*VisitRepository)(nil)

func (r *VisitRepository) Create(_ context.Context, v *visit.Visit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.IsActive() {
		for _, existing := range r.s.visits {
			if existing.MRN == v.MRN && existing.IsActive() {
				return visit.ErrActiveVisitExists
			}
		}
	}
	cp := *v
	r.s.visits[v.ID] = &cp
	return nil
}

func (r *VisitRepository) GetByID(_ context.Context, id uuid.UUID) (*visit.Visit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.visits[id]
	if !ok {
		return nil, visit.ErrVisitNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *VisitRepository) List(_ context.Context, f visit.Filter) ([]*visit.Visit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*visit.Visit
	for _, v := range r.s.visits {
		if f.Matches(v) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AdmissionDate.Equal(b.AdmissionDate) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if f.Order == visit.AdmissionAsc {
			return a.AdmissionDate.Before(b.AdmissionDate)
		}
		return a.AdmissionDate.After(b.AdmissionDate)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *VisitRepository) Count(_ context.Context, f visit.Filter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, v := range r.s.visits {
		if f.Matches(v) {
			n++
		}
	}
	return n, nil
}

func (r *VisitRepository) CountBySpecialty(_ context.Context, f visit.Filter) (map[specialty.Specialty]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[specialty.Specialty]int64)
	for _, v := range r.s.visits {
		if f.Matches(v) {
			out[v.Specialty]++
		}
	}
	return out, nil
}

func (r *VisitRepository) MarkDischarged(_ context.Context, v *visit.Visit) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.visits[v.ID]
	if !ok || !stored.IsActive() {
		return false, nil
	}
	stored.Status = v.Status
	stored.DischargedAt = v.DischargedAt
	stored.DischargeNote = v.DischargeNote
	stored.DischargedBy = v.DischargedBy
	stored.UpdatedAt = v.UpdatedAt
	return true, nil
}
