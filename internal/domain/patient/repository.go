package patient

import (
	"context"
)

type Repository interface {
	// Create persists a new patient.
	Create(ctx context.Context, p *Patient) error

	// GetByMRN returns ErrPatientNotFound if no patient has the MRN.
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)

	// ListByMRNs returns the patients for the given MRNs keyed by MRN. Unknown MRNs are absent.
	ListByMRNs(ctx context.Context, mrns []string) (map[string]*Patient, error)

	// Update writes back demographic fields of an existing patient.
	Update(ctx context.Context, p *Patient) error

	List(ctx context.Context, q *ListPatientsQuery) (*PagedPatients, error)

	Count(ctx context.Context) (int64, error)
}
