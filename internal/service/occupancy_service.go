package service

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"go.uber.org/zap"
)

type SpecialtyOccupancy struct {
	Specialty specialty.Specialty `json:"specialty"`
	// Active counts visible visits: active plus recently discharged.
	Active int64 `json:"active"`
	Total  int64 `json:"total"`
}

// Ratio is Active/Total, or 0 for a specialty with no visits.
func (o SpecialtyOccupancy) Ratio() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.Active) / float64(o.Total)
}

type Dashboard struct {
	TotalPatients int64                `json:"total_patients"`
	ActiveCount   int64                `json:"active_count"`
	PerSpecialty  []SpecialtyOccupancy `json:"per_specialty"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

type RosterEntry struct {
	Visit   *visit.Visit
	Patient *patient.Patient
}

type Roster struct {
	Specialty specialty.Specialty
	Entries   []RosterEntry
}

type OccupancyService struct {
	patients patient.Repository
	visits   visit.Repository
	window   time.Duration
	log      *zap.Logger
	now      Clock
}

func NewOccupancyService(patients patient.Repository, visits visit.Repository, ward config.WardConfig, log *zap.Logger) *OccupancyService {
	return &OccupancyService{
		patients: patients,
		visits:   visits,
		window:   ward.VisibilityWindow,
		log:      log,
		now:      systemClock,
	}
}

func (s *OccupancyService) TotalPatients(ctx context.Context) (int64, error) {
	n, err := s.patients.Count(ctx)
	if err != nil {
		return 0, storeErr("count patients", err)
	}
	return n, nil
}

// ActiveCount counts the same selection VisitService.ListActiveAndRecentlyDischarged lists.
func (s *OccupancyService) ActiveCount(ctx context.Context) (int64, error) {
	return s.activeCountAt(ctx, s.now())
}

func (s *OccupancyService) activeCountAt(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.visits.Count(ctx, visit.Visible(now, s.window))
	if err != nil {
		return 0, storeErr("count visible visits", err)
	}
	return n, nil
}

// PerSpecialty reports every specialty in display order, including those with no visits.
func (s *OccupancyService) PerSpecialty(ctx context.Context) ([]SpecialtyOccupancy, error) {
	return s.perSpecialtyAt(ctx, s.now())
}

func (s *OccupancyService) perSpecialtyAt(ctx context.Context, now time.Time) ([]SpecialtyOccupancy, error) {
	active, err := s.visits.CountBySpecialty(ctx, visit.Visible(now, s.window))
	if err != nil {
		return nil, storeErr("count visible visits by specialty", err)
	}
	total, err := s.visits.CountBySpecialty(ctx, visit.Filter{})
	if err != nil {
		return nil, storeErr("count visits by specialty", err)
	}

	out := make([]SpecialtyOccupancy, 0, len(specialty.All()))
	for _, sp := range specialty.All() {
		out = append(out, SpecialtyOccupancy{Specialty: sp, Active: active[sp], Total: total[sp]})
	}
	for sp := range total {
		if !sp.IsValid() {
			s.log.Warn("visits stored with unknown specialty", zap.String("specialty", string(sp)))
		}
	}
	return out, nil
}

// Dashboard evaluates every figure against one instant so they agree.
func (s *OccupancyService) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()

	totalPatients, err := s.TotalPatients(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.activeCountAt(ctx, now)
	if err != nil {
		return nil, err
	}
	per, err := s.perSpecialtyAt(ctx, now)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalPatients: totalPatients,
		ActiveCount:   active,
		PerSpecialty:  per,
		GeneratedAt:   now,
	}, nil
}

// Rosters groups visible visits by specialty, in display order, with the
// patient joined. search narrows by patient name or MRN.
func (s *OccupancyService) Rosters(ctx context.Context, search string) ([]Roster, error) {
	visits, err := s.visits.List(ctx, visit.Visible(s.now(), s.window))
	if err != nil {
		return nil, storeErr("list visible visits", err)
	}
	byMRN, err := s.patients.ListByMRNs(ctx, mrnsOf(visits))
	if err != nil {
		return nil, storeErr("list patients", err)
	}

	grouped := make(map[specialty.Specialty][]RosterEntry)
	for _, v := range visits {
		p := byMRN[v.MRN]
		if !matchesSearch(search, v.MRN, p) {
			continue
		}
		grouped[v.Specialty] = append(grouped[v.Specialty], RosterEntry{Visit: v, Patient: p})
	}

	out := make([]Roster, 0, len(specialty.All()))
	for _, sp := range specialty.All() {
		out = append(out, Roster{Specialty: sp, Entries: grouped[sp]})
	}
	return out, nil
}
