package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxRuns int) *RunStore {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunStore(db, maxRuns)
}

func TestRecordAndGetRun(t *testing.T) {
	store := newTestStore(t, 100)

	started := time.Now().UTC().Truncate(time.Second)
	run := RunInfo{
		RunUUID:      "run-1",
		TriggeredBy:  "manual",
		StartedAt:    started,
		State:        "PENDING",
		ReleasesSeen: 3,
	}
	require.NoError(t, store.RecordRun(run))

	got, err := store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "manual", got.TriggeredBy)
	assert.Equal(t, "PENDING", got.State)
	assert.Equal(t, 3, got.ReleasesSeen)
	assert.Nil(t, got.FinishedAt)
}

func TestRecordRunUpsert(t *testing.T) {
	store := newTestStore(t, 100)

	started := time.Now().UTC()
	require.NoError(t, store.RecordRun(RunInfo{
		RunUUID: "run-1", TriggeredBy: "daemon", StartedAt: started, State: "STARTED",
	}))

	finished := started.Add(time.Minute)
	require.NoError(t, store.RecordRun(RunInfo{
		RunUUID: "run-1", TriggeredBy: "daemon", StartedAt: started, FinishedAt: &finished,
		State: "SUCCESS", ReleasesSeen: 4, ReleasesApplied: 4, CommitHash: "abc123",
	}))

	got, err := store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", got.State)
	assert.Equal(t, 4, got.ReleasesApplied)
	assert.Equal(t, "abc123", got.CommitHash)
	require.NotNil(t, got.FinishedAt)
}

func TestRecordRunPreservesTerminalState(t *testing.T) {
	store := newTestStore(t, 100)

	started := time.Now().UTC()
	require.NoError(t, store.RecordRun(RunInfo{
		RunUUID: "run-1", TriggeredBy: "manual", StartedAt: started,
		State: "SUCCESS", ReleasesSeen: 2, ReleasesApplied: 2, CommitHash: "abc123",
	}))

	require.NoError(t, store.RecordRun(RunInfo{
		RunUUID: "run-1", TriggeredBy: "manual", StartedAt: started, State: "STARTED",
	}))

	got, err := store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", got.State)
	assert.Equal(t, 2, got.ReleasesApplied)
	assert.Equal(t, "abc123", got.CommitHash)
}

func TestGetRunNotFound(t *testing.T) {
	store := newTestStore(t, 100)

	_, err := store.GetRun("missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetRecentRunsOrder(t *testing.T) {
	store := newTestStore(t, 100)

	base := time.Now().UTC()
	for i, uuid := range []string{"run-a", "run-b", "run-c"} {
		require.NoError(t, store.RecordRun(RunInfo{
			RunUUID:     uuid,
			TriggeredBy: "manual",
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			State:       "SUCCESS",
		}))
	}

	runs, err := store.GetRecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].RunUUID)
	assert.Equal(t, "run-b", runs[1].RunUUID)
}

func TestUpdateRunStatePreservesTerminal(t *testing.T) {
	store := newTestStore(t, 100)

	require.NoError(t, store.RecordRun(RunInfo{
		RunUUID: "run-1", TriggeredBy: "manual", StartedAt: time.Now().UTC(), State: "PENDING",
	}))

	require.NoError(t, store.UpdateRunState("run-1", "STARTED"))
	got, err := store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "STARTED", got.State)

	require.NoError(t, store.UpdateRunState("run-1", "FAILURE"))
	require.NoError(t, store.UpdateRunState("run-1", "STARTED"))

	got, err = store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "FAILURE", got.State)
}

func TestCleanupOldRuns(t *testing.T) {
	store := newTestStore(t, 3)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(RunInfo{
			RunUUID:     string(rune('a' + i)),
			TriggeredBy: "daemon",
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			State:       "SUCCESS",
		}))
	}

	runs, err := store.GetRecentRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	assert.Equal(t, "e", runs[0].RunUUID)
}

func TestIsTerminalState(t *testing.T) {
	assert.True(t, IsTerminalState("SUCCESS"))
	assert.True(t, IsTerminalState("FAILURE"))
	assert.False(t, IsTerminalState("PENDING"))
	assert.False(t, IsTerminalState("STARTED"))
}
