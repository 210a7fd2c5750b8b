package visit

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
)

type SortOrder int

const (
	AdmissionDesc SortOrder = iota
	AdmissionAsc
)

// Filter selects visits. Zero-valued fields do not constrain the result.
// Store implementations translate it to a query; Matches is the reference
// semantics.
type Filter struct {
	MRN       string
	Specialty specialty.Specialty
	Status    Status

	// VisibleSince selects active visits OR discharged visits with
	// UpdatedAt >= *VisibleSince.
	VisibleSince *time.Time

	// AdmittedFrom is inclusive, AdmittedBefore exclusive.
	AdmittedFrom   *time.Time
	AdmittedBefore *time.Time

	Order SortOrder
	Limit int
}

// Visible builds the operational-view filter for now and window.
func Visible(now time.Time, window time.Duration) Filter {
	since := now.Add(-window)
	return Filter{VisibleSince: &since}
}

func (f Filter) Matches(v *Visit) bool {
	if f.MRN != "" && v.MRN != f.MRN {
		return false
	}
	if f.Specialty != "" && v.Specialty != f.Specialty {
		return false
	}
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.VisibleSince != nil {
		visible := v.Status == StatusActive ||
			(v.Status == StatusDischarged && !v.UpdatedAt.Before(*f.VisibleSince))
		if !visible {
			return false
		}
	}
	if f.AdmittedFrom != nil && v.AdmissionDate.Before(*f.AdmittedFrom) {
		return false
	}
	if f.AdmittedBefore != nil && !v.AdmissionDate.Before(*f.AdmittedBefore) {
		return false
	}
	return true
}
