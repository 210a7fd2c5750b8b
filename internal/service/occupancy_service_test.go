package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/visit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func occupancyFor(t *testing.T, per []SpecialtyOccupancy, sp specialty.Specialty) SpecialtyOccupancy {
	t.Helper()
	for _, o := range per {
		if o.Specialty == sp {
			return o
		}
	}
	t.Fatalf("specialty %q missing", sp)
	return SpecialtyOccupancy{}
}

func TestOccupancyService_HematologyScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	old := h.admit(t, "H-1", "Hematology", "2024-01-01")
	h.discharge(t, old, "2024-01-01", "12:00")
	h.clock.Advance(72 * time.Hour)
	h.admit(t, "H-2", "Hematology", "2024-01-04")

	per, err := h.occupancy.PerSpecialty(ctx)
	require.NoError(t, err)

	hem := occupancyFor(t, per, specialty.Hematology)
	assert.EqualValues(t, 1, hem.Active)
	assert.EqualValues(t, 2, hem.Total)
	assert.InDelta(t, 0.5, hem.Ratio(), 1e-9)
}

func TestOccupancyService_PerSpecialtyProperties(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.admit(t, "A", "Neurology", "2024-01-01")
	b := h.admit(t, "B", "Neurology", "2024-01-01")
	h.admit(t, "C", "Respiratory Medicine", "2024-01-01")
	d := h.admit(t, "D", "Immunology & Allergy", "2024-01-01")
	h.discharge(t, b, "2024-01-01", "10:00")
	h.discharge(t, d, "2024-01-01", "10:00")
	h.clock.Advance(50 * time.Hour)
	h.admit(t, "E", "Thrombosis Medicine", "2024-01-03")

	per, err := h.occupancy.PerSpecialty(ctx)
	require.NoError(t, err)
	require.Len(t, per, 10)
	assert.Equal(t, specialty.All(), func() []specialty.Specialty {
		out := make([]specialty.Specialty, len(per))
		for i, o := range per {
			out[i] = o.Specialty
		}
		return out
	}())

	var sumTotal, sumActive int64
	for _, o := range per {
		assert.LessOrEqual(t, o.Active, o.Total, o.Specialty)
		sumTotal += o.Total
		sumActive += o.Active
	}
	allVisits, err := h.store.Visits().Count(ctx, visit.Filter{})
	require.NoError(t, err)
	assert.Equal(t, allVisits, sumTotal)

	active, err := h.occupancy.ActiveCount(ctx)
	require.NoError(t, err)
	listed, err := h.visits.ListActiveAndRecentlyDischarged(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(listed), active)
	assert.Equal(t, active, sumActive)
	assert.EqualValues(t, 3, active)

	empty := occupancyFor(t, per, specialty.SafetyAdmission)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Ratio())
}

func TestOccupancyService_Dashboard(t *testing.T) {
	h := newHarness(t)
	h.admit(t, "1", "Neurology", "2024-01-01")
	h.admit(t, "2", "Gastroenterology", "2024-01-01")

	d, err := h.occupancy.Dashboard(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, d.TotalPatients)
	assert.EqualValues(t, 2, d.ActiveCount)
	assert.Len(t, d.PerSpecialty, 10)
	assert.Equal(t, h.clock.Now(), d.GeneratedAt)
}

func TestOccupancyService_Rosters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.admit(t, "N-1", "Neurology", "2024-01-01")
	h.admit(t, "N-2", "Neurology", "2024-01-02")
	gone := h.admit(t, "G-1", "Gastroenterology", "2024-01-01")
	h.discharge(t, gone, "2024-01-01", "10:00")
	h.clock.Advance(72 * time.Hour)

	rosters, err := h.occupancy.Rosters(ctx, "")
	require.NoError(t, err)
	require.Len(t, rosters, 10)

	byName := map[specialty.Specialty]Roster{}
	for _, r := range rosters {
		byName[r.Specialty] = r
	}
	neuro := byName[specialty.Neurology]
	require.Len(t, neuro.Entries, 2)
	assert.Equal(t, "N-2", neuro.Entries[0].Visit.MRN)
	assert.Equal(t, "Patient N-2", neuro.Entries[0].Patient.Name)
	assert.Empty(t, byName[specialty.Gastroenterology].Entries)

	filtered, err := h.occupancy.Rosters(ctx, "n-1")
	require.NoError(t, err)
	for _, r := range filtered {
		if r.Specialty == specialty.Neurology {
			require.Len(t, r.Entries, 1)
			assert.Equal(t, "N-1", r.Entries[0].Visit.MRN)
		} else {
			assert.Empty(t, r.Entries)
		}
	}
}
