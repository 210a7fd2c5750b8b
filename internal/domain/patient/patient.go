package patient

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

const (
	MinAge = 0
	MaxAge = 150
)

// Patient holds demographics keyed by medical record number. Rows are created
// on first admission and never deleted.
type Patient struct {
	MRN       string    `gorm:"column:mrn;type:varchar(50);primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name           string              `gorm:"column:patient_name;type:varchar(200);not null;index"`
	Age            int                 `gorm:"column:age;not null"`
	Gender         Gender              `gorm:"column:gender;type:varchar(20);not null"`
	Specialty      specialty.Specialty `gorm:"column:specialty;type:varchar(100);not null"`
	AssignedDoctor string              `gorm:"column:assigned_doctor;type:varchar(200)"`
	Diagnosis      string              `gorm:"column:diagnosis;type:text"`
	AdmissionDate  time.Time           `gorm:"column:admission_date;not null"`

	CreatedBy string `gorm:"column:created_by;type:varchar(50)"`
}

func (Patient) TableName() string {
	return "patients"
}

func NormalizeMRN(mrn string) string {
	return strings.TrimSpace(mrn)
}

// ApplyCorrection overwrites the demographic fields that are set on cmd.
func (p *Patient) ApplyCorrection(cmd *UpdatePatientCommand) {
	if cmd.Name != nil {
		p.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Age != nil {
		p.Age = *cmd.Age
	}
	if cmd.Gender != nil {
		p.Gender = *cmd.Gender
	}
	if cmd.AssignedDoctor != nil {
		p.AssignedDoctor = strings.TrimSpace(*cmd.AssignedDoctor)
	}
	if cmd.Diagnosis != nil {
		p.Diagnosis = strings.TrimSpace(*cmd.Diagnosis)
	}
}

type UpdatePatientCommand struct {
	Name           *string
	Age            *int
	Gender         *Gender
	AssignedDoctor *string
	Diagnosis      *string
}

// ListPatientsQuery defines filtering and pagination for patient list queries.
type ListPatientsQuery struct {
	Search   string // Case-insensitive match on name or MRN
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
