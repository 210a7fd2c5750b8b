package note

import (
	"time"

	"github.com/google/uuid"
)

// Note is free text attached to a patient. Edits replace Content in place;
// prior content is not kept.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`

	MRN     string `gorm:"column:mrn;type:varchar(50);not null;index"`
	Content string `gorm:"column:content;type:text;not null"`

	// Author is the display name, AuthorCode the employee code behind it.
	Author     string `gorm:"column:created_by;type:varchar(200);not null"`
	AuthorCode string `gorm:"column:created_by_code;type:varchar(50)"`
}

func (Note) TableName() string {
	return "patient_notes"
}
