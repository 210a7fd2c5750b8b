package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/google/uuid"
)

type EmployeeRepository struct {
	s *Store
}

func (r *EmployeeRepository) Create(_ context.Context, e *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.employees {
		if existing.Code == e.Code {
			return domain.ErrEmployeeCodeTaken
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	cp := *e
	r.s.employees[e.ID] = &cp
	return nil
}

func (r *EmployeeRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *EmployeeRepository) GetByCode(_ context.Context, code string) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.employees {
		if e.Code == code {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

func (r *EmployeeRepository) List(_ context.Context) ([]*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Employee, 0, len(r.s.employees))
	for _, e := range r.s.employees {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *EmployeeRepository) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return domain.ErrEmployeeNotFound
	}
	e.Role = role
	e.UpdatedAt = time.Now()
	return nil
}

func (r *EmployeeRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(r.s.employees, id)
	return nil
}

func (r *EmployeeRepository) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.employees[id]; ok {
		e.LastLoginAt = &at
	}
	return nil
}

type AuditRepository struct {
	s *Store
}

func (r *AuditRepository) Create(_ context.Context, entry *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}
	cp := *entry
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

// Entries returns a snapshot of persisted audit entries.
func (r *AuditRepository) Entries() []domain.AuditLog {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.AuditLog, len(r.s.audit))
	for i, e := range r.s.audit {
		out[i] = *e
	}
	return out
}
