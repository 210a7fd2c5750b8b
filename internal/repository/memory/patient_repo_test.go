package memory

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/note"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain/specialty"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatient(mrn, name string, admitted time.Time) *patient.Patient {
	return &patient.Patient{
		MRN:           mrn,
		Name:          name,
		Age:           40,
		Gender:        patient.GenderMale,
		Specialty:     specialty.Gastroenterology,
		AdmissionDate: admitted,
	}
}

func TestPatientRepository_CreateAndUpdate(t *testing.T) {
	repo := New().Patients()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPatient("P1", "Alex Moreno", base)))
	assert.ErrorIs(t, repo.Create(ctx, newPatient("P1", "Other", base)), patient.ErrPatientAlreadyExists)

	p, err := repo.GetByMRN(ctx, "P1")
	require.NoError(t, err)
	p.Age = 41
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByMRN(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 41, got.Age)

	assert.ErrorIs(t, repo.Update(ctx, newPatient("nope", "x", base)), patient.ErrPatientNotFound)
	_, err = repo.GetByMRN(ctx, "nope")
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)

	byMRN, err := repo.ListByMRNs(ctx, []string{"P1", "nope"})
	require.NoError(t, err)
	assert.Len(t, byMRN, 1)
	assert.Contains(t, byMRN, "P1")
}

func TestPatientRepository_ListSearchAndPaging(t *testing.T) {
	repo := New().Patients()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newPatient(fmt.Sprintf("MRN%d", i), fmt.Sprintf("Patient %d", i), base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.Create(ctx, newPatient("X9", "Bianca Ortiz", base)))

	page, err := repo.List(ctx, &patient.ListPatientsQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 6, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Patients, 2)
	assert.Equal(t, "MRN2", page.Patients[0].MRN)

	found, err := repo.List(ctx, &patient.ListPatientsQuery{Search: "BIANCA", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, found.Patients, 1)
	assert.Equal(t, "X9", found.Patients[0].MRN)

	byMRN, err := repo.List(ctx, &patient.ListPatientsQuery{Search: "mrn3", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, byMRN.Patients, 1)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)
}

func TestNoteRepository_NewestFirst(t *testing.T) {
	repo := New().Notes()
	ctx := context.Background()

	older := &note.Note{ID: uuid.New(), MRN: "N1", Content: "a", CreatedAt: base, UpdatedAt: base}
	newer := &note.Note{ID: uuid.New(), MRN: "N1", Content: "b", CreatedAt: base.Add(time.Minute), UpdatedAt: base.Add(time.Minute)}
	other := &note.Note{ID: uuid.New(), MRN: "N2", Content: "c", CreatedAt: base, UpdatedAt: base}
	for _, n := range []*note.Note{older, newer, other} {
		require.NoError(t, repo.Create(ctx, n))
	}

	got, err := repo.ListByMRN(ctx, "N1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)

	require.NoError(t, repo.UpdateContent(ctx, older.ID, "edited", base.Add(time.Hour)))
	n, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", n.Content)
	assert.Equal(t, base, n.CreatedAt)

	assert.ErrorIs(t, repo.UpdateContent(ctx, uuid.New(), "x", base), note.ErrNoteNotFound)
}

func TestNoteRepository_SameInstantOrderIsStable(t *testing.T) {
	repo := New().Notes()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		n := &note.Note{ID: uuid.New(), MRN: "N3", Content: "same", CreatedAt: base, UpdatedAt: base}
		require.NoError(t, repo.Create(ctx, n))
		ids = append(ids, n.ID.String())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	for i := 0; i < 3; i++ {
		got, err := repo.ListByMRN(ctx, "N3")
		require.NoError(t, err)
		require.Len(t, got, len(ids))
		for j, n := range got {
			assert.Equal(t, ids[j], n.ID.String())
		}
	}
}
