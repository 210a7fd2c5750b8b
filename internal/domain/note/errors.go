package note

import "errors"

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrEmptyContent = errors.New("note content cannot be empty")
)
