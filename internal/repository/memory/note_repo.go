package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/google/uuid"
)

type NoteRepository struct {
	s *Store
}

var _ note.Repository = (*NoteRepository)(nil)

func (r *NoteRepository) Create(_ context.Context, n *note.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	r.s.notes[n.ID] = &cp
	return nil
}

func (r *NoteRepository) GetByID(_ context.Context, id uuid.UUID) (*note.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.notes[id]
	if !ok {
		return nil, note.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *NoteRepository) UpdateContent(_ context.Context, id uuid.UUID, content string, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notes[id]
	if !ok {
		return note.ErrNoteNotFound
	}
	n.Content = content
	n.UpdatedAt = updatedAt
	return nil
}

func (r *NoteRepository) ListByMRN(_ context.Context, mrn string) ([]*note.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*note.Note
	for _, n := range r.s.notes {
		if n.MRN == mrn {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out, nil
}
