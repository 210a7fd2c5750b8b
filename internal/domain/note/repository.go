package note

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)
	// UpdateContent returns ErrNoteNotFound if no row matched.
	UpdateContent(ctx context.Context, id uuid.UUID, content string, updatedAt time.Time) error
	// ListByMRN returns notes newest first.
	ListByMRN(ctx context.Context, mrn string) ([]*Note, error)
}
