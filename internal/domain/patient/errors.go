package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient with this MRN already exists")
	ErrInvalidGender        = errors.New("invalid gender value")
	ErrInvalidAge           = errors.New("age must be between 0 and 150")
	ErrMRNRequired          = errors.New("MRN is required")
)
