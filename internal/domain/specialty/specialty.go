package specialty

import (
	"errors"
	"strings"
)

var ErrInvalidSpecialty = errors.New("invalid specialty")

// Specialty is one of the fixed clinical departments used for grouping and filtering.
type Specialty string

const (
	GeneralInternalMedicine Specialty = "General Internal Medicine"
	RespiratoryMedicine     Specialty = "Respiratory Medicine"
	InfectiousDiseases      Specialty = "Infectious Diseases"
	Neurology               Specialty = "Neurology"
	Gastroenterology        Specialty = "Gastroenterology"
	Rheumatology            Specialty = "Rheumatology"
	Hematology              Specialty = "Hematology"
	ThrombosisMedicine      Specialty = "Thrombosis Medicine"
	ImmunologyAllergy       Specialty = "Immunology & Allergy"
	SafetyAdmission         Specialty = "Safety Admission"
)

var all = []Specialty{
	GeneralInternalMedicine,
	RespiratoryMedicine,
	InfectiousDiseases,
	Neurology,
	Gastroenterology,
	Rheumatology,
	Hematology,
	ThrombosisMedicine,
	ImmunologyAllergy,
	SafetyAdmission,
}

// All returns the specialties in display order. The slice is a copy.
func All() []Specialty {
	out := make([]Specialty, len(all))
	copy(out, all)
	return out
}

func (s Specialty) IsValid() bool {
	for _, v := range all {
		if v == s {
			return true
		}
	}
	return false
}

func (s Specialty) String() string {
	return string(s)
}

// Parse accepts an exact specialty name, ignoring surrounding whitespace.
func Parse(raw string) (Specialty, error) {
	s := Specialty(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", ErrInvalidSpecialty
	}
	return s, nil
}
