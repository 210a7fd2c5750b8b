package visit

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new visit. Returns ErrActiveVisitExists when the store
	// rejects a second active visit for the same MRN.
	Create(ctx context.Context, v *Visit) error

	// GetByID returns ErrVisitNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)

	List(ctx context.Context, f Filter) ([]*Visit, error)

	Count(ctx context.Context, f Filter) (int64, error)

	// CountBySpecialty groups matching visits by specialty.
	CountBySpecialty(ctx context.Context, f Filter) (map[specialty.Specialty]int64, error)

	// MarkDischarged writes the discharge fields only if the stored visit is
	// still active. It reports whether a row was updated.
	MarkDischarged(ctx context.Context, v *Visit) (bool, error)
}
