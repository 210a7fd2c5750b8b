package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepository struct {
	db *gorm.DB
}

var _ note.Repository = (*NoteRepository)(nil)

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *note.Note) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	return nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*note.Note, error) {
	var n note.Note
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, note.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting note: %w", err)
	}
	return &n, nil
}

func (r *NoteRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&note.Note{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"content": content, "updated_at": updatedAt})
	if res.Error != nil {
		return fmt.Errorf("updating note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return note.ErrNoteNotFound
	}
	return nil
}

// byMRN orders newest first; id breaks ties between notes written in the same instant.
func (r *NoteRepository) byMRN(ctx context.Context, mrn string) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("mrn = ?", mrn).
		Order("created_at DESC").
		Order("id DESC")
}

func (r *NoteRepository) ListByMRN(ctx context.Context, mrn string) ([]*note.Note, error) {
	var rows []*note.Note
	err := r.byMRN(ctx, mrn).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return rows, nil
}
