package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suivi/internal/apperror"
	"suivi/internal/core"
	"suivi/internal/storage"
)

type fixture struct {
	repo          *storage.Repository
	projects      *ProjectService
	collaborators *CollaboratorService
	recap         *RecapService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return &fixture{
		repo:          repo,
		projects:      NewProjectService(repo),
		collaborators: NewCollaboratorService(repo),
		recap:         NewRecapService(repo),
	}
}

func (f *fixture) project(t *testing.T, name string) *core.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), name)
	require.NoError(t, err)
	return p
}

func TestCreateCollaborator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	p2 := f.project(t, "P2")

	snap, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID, p2.ID}, "03", 2025)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, core.MonthCode("03"), snap.Month)
	assert.Equal(t, 2025, snap.Year)
	require.Len(t, snap.Assignments, 2)
	assert.Equal(t, "P1", snap.Assignments[0].ProjectName)
	assert.Zero(t, snap.Assignments[0].DaysWorked)
	assert.Zero(t, snap.TotalDays())
}

func TestCreateCollaborator_EmptyName(t *testing.T) {
	f := newFixture(t)

	_, err := f.collaborators.Create(context.Background(), "   ", nil, "03", 2025)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestCreateCollaborator_UnknownProjectPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")

	_, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID, "missing"}, "03", 2025)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	list, err := f.collaborators.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list, "a rejected create must persist nothing")
}

func TestUpdateCollaborator_PreservesDaysForKeptProjects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	p2 := f.project(t, "P2")
	p3 := f.project(t, "P3")

	snap, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID, p2.ID}, "03", 2025)
	require.NoError(t, err)
	_, _, err = f.collaborators.RecordDays(ctx, snap.ID, p1.ID, 7, "03", 2025)
	require.NoError(t, err)

	// keep P1, drop P2, add P3
	updated, err := f.collaborators.Update(ctx, snap.ID, "Alice", []string{p1.ID, p3.ID})
	require.NoError(t, err)
	require.Len(t, updated.Assignments, 2)

	kept, ok := updated.AssignmentFor(p1.ID)
	require.True(t, ok)
	assert.Equal(t, 7.0, kept.DaysWorked, "days survive for kept projects")

	added, ok := updated.AssignmentFor(p3.ID)
	require.True(t, ok)
	assert.Zero(t, added.DaysWorked, "new projects start at zero")

	_, ok = updated.AssignmentFor(p2.ID)
	assert.False(t, ok, "removed projects are dropped silently")
}

func TestUpdateCollaborator_NotFound(t *testing.T) {
	f := newFixture(t)
	p1 := f.project(t, "P1")

	_, err := f.collaborators.Update(context.Background(), "missing", "Alice", []string{p1.ID})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestRecordDays_OverwritesNotAdds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	p2 := f.project(t, "P2")
	snap, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID, p2.ID}, "03", 2025)
	require.NoError(t, err)

	_, created, err := f.collaborators.RecordDays(ctx, snap.ID, p1.ID, 5, "03", 2025)
	require.NoError(t, err)
	assert.False(t, created)

	_, created, err = f.collaborators.RecordDays(ctx, snap.ID, p1.ID, 8, "03", 2025)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := f.collaborators.Get(ctx, snap.ID)
	require.NoError(t, err)
	a1, _ := got.AssignmentFor(p1.ID)
	a2, _ := got.AssignmentFor(p2.ID)
	assert.Equal(t, 8.0, a1.DaysWorked, "second write wins")
	assert.Zero(t, a2.DaysWorked)
	assert.Equal(t, 8.0, got.TotalDays())
}

func TestRecordDays_ZeroClearsNegativeRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	snap, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID}, "03", 2025)
	require.NoError(t, err)

	_, _, err = f.collaborators.RecordDays(ctx, snap.ID, p1.ID, 5, "03", 2025)
	require.NoError(t, err)
	_, _, err = f.collaborators.RecordDays(ctx, snap.ID, p1.ID, 0, "03", 2025)
	require.NoError(t, err)

	got, err := f.collaborators.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalDays())

	_, _, err = f.collaborators.RecordDays(ctx, snap.ID, p1.ID, -1, "03", 2025)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestRecordDays_UnassignedProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	other := f.project(t, "Other")
	snap, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID}, "03", 2025)
	require.NoError(t, err)

	_, _, err = f.collaborators.RecordDays(ctx, snap.ID, other.ID, 3, "03", 2025)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestRecordDays_UnknownCollaborator(t *testing.T) {
	f := newFixture(t)
	p1 := f.project(t, "P1")

	_, _, err := f.collaborators.RecordDays(context.Background(), "missing", p1.ID, 3, "03", 2025)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestRecordDays_ClonesSnapshotForNewPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	p2 := f.project(t, "P2")
	march, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID, p2.ID}, "03", 2025)
	require.NoError(t, err)
	_, err = f.collaborators.UpdateTJM(ctx, march.ID, core.Money{Cents: 45000})
	require.NoError(t, err)
	_, _, err = f.collaborators.RecordDays(ctx, march.ID, p1.ID, 7, "03", 2025)
	require.NoError(t, err)

	returned, created, err := f.collaborators.RecordDays(ctx, march.ID, p1.ID, 4, "04", 2025)
	require.NoError(t, err)
	assert.True(t, created)
	// the response carries the addressed snapshot, not the new row
	assert.Equal(t, march.ID, returned.ID)

	april, err := f.collaborators.List(ctx, &storage.Period{Month: "04", Year: 2025})
	require.NoError(t, err)
	require.Len(t, april, 1)

	clone := april[0]
	assert.NotEqual(t, march.ID, clone.ID)
	assert.Equal(t, "Alice", clone.Name)
	require.NotNil(t, clone.TJM)
	assert.Equal(t, int64(45000), clone.TJM.Cents, "rate carries over to the new period")
	require.Len(t, clone.Assignments, 2)

	a1, _ := clone.AssignmentFor(p1.ID)
	a2, _ := clone.AssignmentFor(p2.ID)
	assert.Equal(t, 4.0, a1.DaysWorked, "only the target project is non-zero")
	assert.Zero(t, a2.DaysWorked)

	// the original period is untouched
	got, err := f.collaborators.Get(ctx, march.ID)
	require.NoError(t, err)
	orig, _ := got.AssignmentFor(p1.ID)
	assert.Equal(t, 7.0, orig.DaysWorked)
}

func TestRecordDays_ReusesExistingPeriodSnapshotByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	march, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID}, "03", 2025)
	require.NoError(t, err)
	april, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID}, "04", 2025)
	require.NoError(t, err)

	// addressed via the March row, recorded into the existing April row
	_, created, err := f.collaborators.RecordDays(ctx, march.ID, p1.ID, 6, "04", 2025)
	require.NoError(t, err)
	assert.False(t, created, "find-or-create must find the existing period snapshot")

	got, err := f.collaborators.Get(ctx, april.ID)
	require.NoError(t, err)
	a, _ := got.AssignmentFor(p1.ID)
	assert.Equal(t, 6.0, a.DaysWorked)

	// exactly one April snapshot for Alice, no duplicate
	list, err := f.collaborators.List(ctx, &storage.Period{Month: "04", Year: 2025})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateCommentsOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	snap, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID}, "03", 2025)
	require.NoError(t, err)

	got, err := f.collaborators.UpdateComments(ctx, snap.ID, "congés du 10 au 14")
	require.NoError(t, err)
	assert.Equal(t, "congés du 10 au 14", got.Comments)

	got, err = f.collaborators.UpdateComments(ctx, snap.ID, "")
	require.NoError(t, err)
	assert.Empty(t, got.Comments)

	_, err = f.collaborators.UpdateComments(ctx, "missing", "x")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestRecapScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.project(t, "P1")
	p2 := f.project(t, "P2")

	snap, err := f.collaborators.Create(ctx, "Alice", []string{p1.ID, p2.ID}, "04", 2025)
	require.NoError(t, err)
	_, err = f.collaborators.UpdateTJM(ctx, snap.ID, core.Money{Cents: 10000})
	require.NoError(t, err)
	_, _, err = f.collaborators.RecordDays(ctx, snap.ID, p1.ID, 10, "04", 2025)
	require.NoError(t, err)
	_, _, err = f.collaborators.RecordDays(ctx, snap.ID, p2.ID, 5, "04", 2025)
	require.NoError(t, err)

	recaps, err := f.recap.ByMonth(ctx)
	require.NoError(t, err)
	require.Len(t, recaps, 1)
	assert.Equal(t, core.MonthCode("04"), recaps[0].Month)
	assert.Equal(t, 1500.0, recaps[0].Total.Euros())

	costs := map[string]float64{}
	for _, pc := range recaps[0].Projects {
		costs[pc.Name] = pc.TotalCost.Euros()
	}
	assert.Equal(t, 1000.0, costs["P1"])
	assert.Equal(t, 500.0, costs["P2"])
}
