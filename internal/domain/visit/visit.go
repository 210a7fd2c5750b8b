package visit

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/google/uuid"
)

// Status transitions:
//
//	active → discharged
//
// Discharged is terminal. Readmitting the same MRN creates a new visit.
type Status string

const (
	StatusActive     Status = "Active"
	StatusDischarged Status = "Discharged"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDischarged
}

type ShiftType string

const (
	ShiftMorning          ShiftType = "Morning"
	ShiftEvening          ShiftType = "Evening"
	ShiftNight            ShiftType = "Night"
	ShiftWeekendMorning12 ShiftType = "Morning 12 hours"
	ShiftWeekendNight12   ShiftType = "Night 12 hours"
)

var (
	regularShifts = []ShiftType{ShiftMorning, ShiftEvening, ShiftNight}
	weekendShifts = []ShiftType{ShiftWeekendMorning12, ShiftWeekendNight12}
)

// ShiftsFor lists the shift types allowed for a weekend or regular admission.
func ShiftsFor(weekend bool) []ShiftType {
	src := regularShifts
	if weekend {
		src = weekendShifts
	}
	out := make([]ShiftType, len(src))
	copy(out, src)
	return out
}

// ValidShift reports whether shift belongs to the weekend or regular set.
func ValidShift(shift ShiftType, weekend bool) bool {
	for _, s := range ShiftsFor(weekend) {
		if s == shift {
			return true
		}
	}
	return false
}

// DefaultVisibilityWindow keeps discharged visits on operational views for two days.
const DefaultVisibilityWindow = 48 * time.Hour

// Visit is one admission-to-discharge episode. UpdatedAt is set explicitly by
// the lifecycle service because the visibility window is measured from it.
type Visit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;index"`

	MRN string `gorm:"column:mrn;type:varchar(50);not null;index"`

	AdmissionDate time.Time  `gorm:"column:admission_date;not null;index"`
	DischargedAt  *time.Time `gorm:"column:discharge_date"`

	Status         Status              `gorm:"column:patient_status;type:varchar(20);not null;default:'Active';index"`
	Specialty      specialty.Specialty `gorm:"column:specialty;type:varchar(100);not null;index"`
	Diagnosis      string              `gorm:"column:diagnosis;type:text"`
	AssignedDoctor string              `gorm:"column:assigned_doctor;type:varchar(200)"`
	ShiftType      ShiftType           `gorm:"column:shift_type;type:varchar(30);not null"`
	IsWeekendShift bool                `gorm:"column:is_weekend_shift;not null;default:false"`

	DischargeNote string `gorm:"column:discharge_note;type:text"`

	AdmittedBy   string `gorm:"column:admitted_by;type:varchar(50)"`
	DischargedBy string `gorm:"column:discharged_by;type:varchar(50)"`
}

func (Visit) TableName() string {
	return "visits"
}

func (v *Visit) IsActive() bool {
	return v.Status == StatusActive
}

// Discharge moves an active visit to discharged. now becomes the new UpdatedAt.
func (v *Visit) Discharge(at time.Time, note, by string, now time.Time) error {
	if !v.IsActive() {
		return ErrAlreadyDischarged
	}
	v.Status = StatusDischarged
	v.DischargedAt = &at
	v.DischargeNote = strings.TrimSpace(note)
	v.DischargedBy = by
	v.UpdatedAt = now
	return nil
}

// VisibleAt reports whether the visit belongs on operational views at now:
// every active visit, plus discharged visits touched within window.
func (v *Visit) VisibleAt(now time.Time, window time.Duration) bool {
	if v.IsActive() {
		return true
	}
	return v.Status == StatusDischarged && !v.UpdatedAt.Before(now.Add(-window))
}

// AdmittedOn formats the admission date as YYYY-MM-DD in loc.
func (v *Visit) AdmittedOn(loc *time.Location) string {
	return v.AdmissionDate.In(loc).Format(time.DateOnly)
}

type AdmitCommand struct {
	MRN            string
	PatientName    string
	Age            *int
	Gender         string
	AdmissionDate  string // YYYY-MM-DD, in the ward timezone
	Specialty      string
	Diagnosis      string
	AssignedDoctor string
	ShiftType      string
	IsWeekendShift bool
}

type DischargeCommand struct {
	VisitID       uuid.UUID
	DischargeDate string // YYYY-MM-DD
	DischargeTime string // HH:MM
	Note          string
}
