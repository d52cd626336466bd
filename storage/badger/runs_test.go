package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuns(t *testing.T) storage.RunRepository {
	t.Helper()
	runs, backend, err := NewMemoryRunRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		runs.Close()
		backend.Close()
	})
	return runs
}

func makeRun(path string, accuracy float64) *core.TrainingRun {
	start := time.Now().UTC().Truncate(time.Microsecond)
	return &core.TrainingRun{
		ArtifactPath: path,
		StartedAt:    start,
		FinishedAt:   start.Add(time.Second),
		TrainSize:    8,
		TestSize:     2,
		Accuracy:     accuracy,
		Classes: []core.ClassMetrics{
			{Label: core.LabelFake, Precision: 1, Recall: 1, F1: 1, Support: 1},
			{Label: core.LabelReal, Precision: 1, Recall: 1, F1: 1, Support: 1},
		},
	}
}

func TestAddRun_AssignsIDs(t *testing.T) {
	runs := newTestRuns(t)
	ctx := context.Background()

	first, err := runs.AddRun(ctx, makeRun("a.vrty", 0.9))
	require.NoError(t, err)
	second, err := runs.AddRun(ctx, makeRun("b.vrty", 0.8))
	require.NoError(t, err)

	assert.NotZero(t, first.Id)
	assert.Greater(t, second.Id, first.Id)
}

func TestAddRun_Invalid(t *testing.T) {
	runs := newTestRuns(t)
	ctx := context.Background()

	_, err := runs.AddRun(ctx, nil)
	assert.ErrorIs(t, err, core.ErrInvalidTrainingRun)

	_, err = runs.AddRun(ctx, makeRun("", 0.5))
	assert.ErrorIs(t, err, core.ErrInvalidTrainingRun)
}

func TestGetRun(t *testing.T) {
	runs := newTestRuns(t)
	ctx := context.Background()

	added, err := runs.AddRun(ctx, makeRun("model.vrty", 0.875))
	require.NoError(t, err)

	got, err := runs.GetRun(ctx, added.Id)
	require.NoError(t, err)
	assert.Equal(t, "model.vrty", got.ArtifactPath)
	assert.Equal(t, 0.875, got.Accuracy)
	assert.True(t, added.StartedAt.Equal(got.StartedAt))
	assert.Len(t, got.Classes, 2)

	_, err = runs.GetRun(ctx, added.Id+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListRuns_NewestFirst(t *testing.T) {
	runs := newTestRuns(t)
	ctx := context.Background()

	for _, path := range []string{"one.vrty", "two.vrty", "three.vrty"} {
		_, err := runs.AddRun(ctx, makeRun(path, 0.5))
		require.NoError(t, err)
	}

	all, err := runs.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three.vrty", all[0].ArtifactPath)
	assert.Equal(t, "two.vrty", all[1].ArtifactPath)
	assert.Equal(t, "one.vrty", all[2].ArtifactPath)

	limited, err := runs.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, "three.vrty", limited[0].ArtifactPath)
}

func TestListRuns_Empty(t *testing.T) {
	runs := newTestRuns(t)

	all, err := runs.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListRuns_InvalidLimit(t *testing.T) {
	runs := newTestRuns(t)

	_, err := runs.ListRuns(context.Background(), 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestRunsPersistAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	runs, err := NewRunRepository(backend)
	require.NoError(t, err)
	added, err := runs.AddRun(ctx, makeRun("kept.vrty", 0.7))
	require.NoError(t, err)
	require.NoError(t, runs.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	runs, err = NewRunRepository(backend)
	require.NoError(t, err)
	defer runs.Close()

	got, err := runs.GetRun(ctx, added.Id)
	require.NoError(t, err)
	assert.Equal(t, "kept.vrty", got.ArtifactPath)

	next, err := runs.AddRun(ctx, makeRun("next.vrty", 0.7))
	require.NoError(t, err)
	assert.Greater(t, next.Id, added.Id)
}
