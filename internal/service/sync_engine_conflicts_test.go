// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/emotion-sync/internal/store"
	"github.com/MKhiriev/emotion-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConflictFixture leaves the engine with one conflict on e2: synced
// baseline "A", local edit "B", remote edit "C".
func newConflictFixture(t *testing.T) (*engineFixture, *fakeRemote, models.SyncConflict) {
	t.Helper()
	ctx := context.Background()

	remote := newFakeRemote(emotion("e2", "C"))
	f := newTestEngine(t, remote, models.ConnectivityOnline, 0)
	require.NoError(t, f.store.Insert(ctx, emotion("e2", "A")))
	require.NoError(t, f.store.SaveLocal(ctx, emotion("e2", "B")))

	require.False(t, f.engine.ForceSync(ctx, false))
	conflicts := f.engine.CurrentState().Conflicts
	require.Len(t, conflicts, 1)

	return f, remote, conflicts[0]
}

func TestSyncEngine_ResolveConflict_KeepLocal(t *testing.T) {
	ctx := context.Background()
	f, remote, c := newConflictFixture(t)

	require.NoError(t, f.engine.ResolveConflict(ctx, c.ID, models.Resolution{Kind: models.ResolutionKeepLocal}))

	state := f.engine.CurrentState()
	assert.Empty(t, state.Conflicts)
	assert.Equal(t, models.StatusIdle, state.Status)
	assert.Equal(t, 1, state.PendingItems)

	items := f.pending(t)
	require.Len(t, items, 1)
	assert.Equal(t, models.OperationUpdate, items[0].Operation)
	assert.Equal(t, "B", description(items[0].Payload))

	require.True(t, f.engine.DrainQueue(ctx))
	got, _ := remote.get(models.EmotionalRecordType, "e2")
	assert.Equal(t, "B", description(got))

	// the next full sync agrees with the backend
	assert.True(t, f.engine.ForceSync(ctx, false))
	assert.True(t, f.record(t, "e2").Synced)
}

func TestSyncEngine_ResolveConflict_KeepRemote(t *testing.T) {
	ctx := context.Background()
	f, _, c := newConflictFixture(t)

	require.NoError(t, f.engine.ResolveConflict(ctx, c.ID, models.Resolution{Kind: models.ResolutionKeepRemote}))

	rec := f.record(t, "e2")
	assert.Equal(t, "C", description(rec.Payload))
	assert.True(t, rec.Synced)
	assert.Empty(t, f.pending(t))
	assert.Equal(t, models.StatusIdle, f.engine.CurrentState().Status)

	assert.True(t, f.engine.ForceSync(ctx, false))
}

func TestSyncEngine_ResolveConflict_Merged(t *testing.T) {
	ctx := context.Background()
	f, remote, c := newConflictFixture(t)

	merged := emotion("e2", "B and C")
	require.NoError(t, f.engine.ResolveConflict(ctx, c.ID, models.Resolution{Kind: models.ResolutionMerged, Merged: merged}))

	assert.Equal(t, "B and C", description(f.record(t, "e2").Payload))
	require.True(t, f.engine.DrainQueue(ctx))

	got, _ := remote.get(models.EmotionalRecordType, "e2")
	assert.Equal(t, "B and C", description(got))
	assert.True(t, f.engine.ForceSync(ctx, false))
}

func TestSyncEngine_ResolveConflict_DismissDetectsAgain(t *testing.T) {
	ctx := context.Background()
	f, _, c := newConflictFixture(t)

	require.NoError(t, f.engine.ResolveConflict(ctx, c.ID, models.Resolution{Kind: models.ResolutionDismiss}))

	state := f.engine.CurrentState()
	assert.Empty(t, state.Conflicts)
	assert.Equal(t, models.StatusIdle, state.Status)
	assert.Equal(t, "B", description(f.record(t, "e2").Payload))

	require.False(t, f.engine.ForceSync(ctx, false))
	again := f.engine.CurrentState().Conflicts
	require.Len(t, again, 1)
	assert.Equal(t, c.ID, again[0].ID)
}

func TestSyncEngine_ResolveConflict_LocalDeleteKept(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote(emotion("e5", "C"))
	f := newTestEngine(t, remote, models.ConnectivityOnline, 0)
	require.NoError(t, f.store.Insert(ctx, emotion("e5", "A")))
	require.NoError(t, f.store.MarkDeleted(ctx, models.EmotionalRecordType, "e5"))

	require.False(t, f.engine.ForceSync(ctx, false))
	conflicts := f.engine.CurrentState().Conflicts
	require.Len(t, conflicts, 1)
	assert.Nil(t, conflicts[0].LocalVersion)

	require.NoError(t, f.engine.ResolveConflict(ctx, conflicts[0].ID, models.Resolution{Kind: models.ResolutionKeepLocal}))
	require.True(t, f.engine.DrainQueue(ctx))

	_, ok := remote.get(models.EmotionalRecordType, "e5")
	assert.False(t, ok)
	_, err := f.store.Get(ctx, models.EmotionalRecordType, "e5")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestSyncEngine_ResolveConflict_OthersRemain(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote(emotion("e1", "C1"), emotion("e2", "C2"))
	f := newTestEngine(t, remote, models.ConnectivityOnline, 0)
	for _, id := range []string{"e1", "e2"} {
		require.NoError(t, f.store.Insert(ctx, emotion(id, "A")))
		require.NoError(t, f.store.SaveLocal(ctx, emotion(id, "B")))
	}

	require.False(t, f.engine.ForceSync(ctx, false))
	conflicts := f.engine.CurrentState().Conflicts
	require.Len(t, conflicts, 2)

	require.NoError(t, f.engine.ResolveConflict(ctx, conflicts[0].ID, models.Resolution{Kind: models.ResolutionKeepRemote}))

	state := f.engine.CurrentState()
	assert.Equal(t, models.StatusConflictDetected, state.Status)
	require.Len(t, state.Conflicts, 1)
	assert.Equal(t, conflicts[1].ID, state.Conflicts[0].ID)
}

func TestSyncEngine_ResolveConflict_Errors(t *testing.T) {
	f, _, c := newConflictFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		conflictID string
		resolution models.Resolution
		wantErr    error
	}{
		{
			name:       "unknown conflict",
			conflictID: "missing",
			resolution: models.Resolution{Kind: models.ResolutionKeepLocal},
			wantErr:    ErrConflictNotFound,
		},
		{
			name:       "unknown kind",
			conflictID: c.ID,
			resolution: models.Resolution{Kind: "flip_a_coin"},
			wantErr:    ErrInvalidResolution,
		},
		{
			name:       "merged without value",
			conflictID: c.ID,
			resolution: models.Resolution{Kind: models.ResolutionMerged},
			wantErr:    ErrInvalidResolution,
		},
		{
			name:       "merged value of another entity",
			conflictID: c.ID,
			resolution: models.Resolution{Kind: models.ResolutionMerged, Merged: emotion("e9", "x")},
			wantErr:    ErrInvalidResolution,
		},
		{
			name:       "merged value fails validation",
			conflictID: c.ID,
			resolution: models.Resolution{Kind: models.ResolutionMerged, Merged: models.EmotionalRecord{ID: "e2"}},
			wantErr:    ErrInvalidResolution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.engine.ResolveConflict(ctx, tt.conflictID, tt.resolution)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	state := f.engine.CurrentState()
	assert.Len(t, state.Conflicts, 1)
	assert.Equal(t, models.StatusConflictDetected, state.Status)
}
