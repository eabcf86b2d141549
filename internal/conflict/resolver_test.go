// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package conflict

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/models"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func emo(id string, intensity int, updated time.Time) models.EmotionalRecord {
	return models.EmotionalRecord{ID: id, Emotion: "joy", Intensity: intensity, UpdatedAt: updated}
}

// synced builds a local record whose checkpoint equals its content.
func synced(p models.Payload) models.Record {
	h := utils.MustHashPayload(p)
	return models.Record{Type: p.EntityType(), ID: p.EntityID(), Payload: p, Hash: h, SyncedHash: h, Synced: true}
}

// edited builds a local record at p whose checkpoint is the hash of baseline.
func edited(p models.Payload, baseline models.Payload) models.Record {
	rec := models.Record{Type: p.EntityType(), ID: p.EntityID(), Payload: p, Hash: utils.MustHashPayload(p)}
	if baseline != nil {
		rec.SyncedHash = utils.MustHashPayload(baseline)
	}
	return rec
}

func tombstone(p models.Payload, baseline models.Payload) models.Record {
	rec := edited(p, baseline)
	rec.Deleted = true
	return rec
}

func resolve(t *testing.T, local []models.Record, remote []models.Payload, opts Options) Result {
	t.Helper()
	res, err := NewResolver().Resolve(models.EmotionalRecordType, local, remote, opts)
	require.NoError(t, err)
	return res
}

// ── one-sided cases ──────────────────────────────────────────────────────────

func TestResolve_RemoteOnlyIsInserted(t *testing.T) {
	r1 := emo("e1", 3, base)
	res := resolve(t, nil, []models.Payload{r1}, Options{})

	assert.Equal(t, []models.Payload{r1}, res.Inserts)
	assert.Empty(t, res.Conflicts)
}

func TestResolve_LocalOnly(t *testing.T) {
	v0 := emo("e1", 3, base)
	v1 := emo("e1", 4, base.Add(time.Minute))

	tests := []struct {
		name          string
		rec           models.Record
		wantDeletes   []string
		wantConflicts int
	}{
		{name: "never synced is a pending create", rec: edited(v0, nil)},
		{name: "never synced tombstone", rec: tombstone(v0, nil)},
		{name: "synced and unmodified is a remote delete", rec: synced(v0), wantDeletes: []string{"e1"}},
		{name: "deleted on both sides", rec: tombstone(v0, v0), wantDeletes: []string{"e1"}},
		{name: "remote delete vs local edit", rec: edited(v1, v0), wantConflicts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolve(t, []models.Record{tt.rec}, nil, Options{})

			assert.Equal(t, tt.wantDeletes, res.Deletes)
			require.Len(t, res.Conflicts, tt.wantConflicts)
			if tt.wantConflicts > 0 {
				assert.Nil(t, res.Conflicts[0].RemoteVersion)
				assert.Equal(t, v1, res.Conflicts[0].LocalVersion)
			}
			assert.Empty(t, res.Inserts)
			assert.Empty(t, res.Updates)
		})
	}
}

// TestResolve_OneSidedChangeAutoMerges verifies that a remote change over an
// unchanged local copy is applied without a conflict.
func TestResolve_OneSidedChangeAutoMerges(t *testing.T) {
	v0 := emo("e1", 3, base)
	remote := emo("e1", 8, base.Add(time.Hour))

	res := resolve(t, []models.Record{synced(v0)}, []models.Payload{remote}, Options{})

	assert.Equal(t, []models.Payload{remote}, res.Updates)
	assert.Empty(t, res.Conflicts)
	assert.Empty(t, res.Pushes)
}

func TestResolve_LocalChangeOverUnchangedRemoteIsPushed(t *testing.T) {
	v0 := emo("e1", 3, base)
	local := emo("e1", 6, base.Add(time.Hour))

	res := resolve(t, []models.Record{edited(local, v0)}, []models.Payload{v0}, Options{})

	require.Len(t, res.Pushes, 1)
	assert.Equal(t, Push{ID: "e1", Operation: models.OperationUpdate, Payload: local}, res.Pushes[0])
	assert.Empty(t, res.Updates)
	assert.Empty(t, res.Conflicts)
}

func TestResolve_Tombstones(t *testing.T) {
	v0 := emo("e1", 3, base)
	changed := emo("e1", 9, base.Add(time.Hour))

	t.Run("remote unchanged pushes delete", func(t *testing.T) {
		res := resolve(t, []models.Record{tombstone(v0, v0)}, []models.Payload{v0}, Options{})
		assert.Equal(t, []Push{{ID: "e1", Operation: models.OperationDelete}}, res.Pushes)
		assert.Empty(t, res.Conflicts)
	})

	t.Run("remote changed is a conflict", func(t *testing.T) {
		res := resolve(t, []models.Record{tombstone(v0, v0)}, []models.Payload{changed}, Options{})
		require.Len(t, res.Conflicts, 1)
		assert.Nil(t, res.Conflicts[0].LocalVersion)
		assert.Equal(t, changed, res.Conflicts[0].RemoteVersion)
	})
}

// ── both sides ───────────────────────────────────────────────────────────────

func TestResolve_EqualContent(t *testing.T) {
	v0 := emo("e1", 3, base)
	v1 := emo("e1", 5, base.Add(time.Minute))

	t.Run("synced is a no-op", func(t *testing.T) {
		res := resolve(t, []models.Record{synced(v0)}, []models.Payload{v0}, Options{})
		assert.True(t, res.Empty())
	})

	t.Run("lagging checkpoint is confirmed", func(t *testing.T) {
		res := resolve(t, []models.Record{edited(v1, v0)}, []models.Payload{v1}, Options{})
		assert.Equal(t, []Confirm{{ID: "e1", Hash: utils.MustHashPayload(v1)}}, res.Confirms)
		assert.Empty(t, res.Conflicts)
	})

	t.Run("created offline and already on the backend", func(t *testing.T) {
		res := resolve(t, []models.Record{edited(v1, nil)}, []models.Payload{v1}, Options{})
		assert.Len(t, res.Confirms, 1)
	})
}

func TestResolve_BothChangedIsConflict(t *testing.T) {
	v0 := emo("e1", 3, base)
	local := emo("e1", 4, base.Add(2*time.Hour))
	remote := emo("e1", 7, base.Add(time.Hour))

	res := resolve(t, []models.Record{edited(local, v0)}, []models.Payload{remote}, Options{})

	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, models.EmotionalRecordType, c.EntityType)
	assert.Equal(t, "e1", c.EntityID)
	assert.Equal(t, local, c.LocalVersion)
	assert.Equal(t, remote, c.RemoteVersion)
	assert.Nil(t, c.SuggestedResolution)
	assert.True(t, c.DetectedAt.IsZero())
	assert.NotEmpty(t, c.ID)
	assert.Empty(t, res.Updates)
	assert.Empty(t, res.Pushes)
}

func TestResolve_FirstSync(t *testing.T) {
	local := emo("e1", 4, base)
	remote := emo("e1", 7, base)

	t.Run("unsynced local conflicts", func(t *testing.T) {
		res := resolve(t, []models.Record{edited(local, nil)}, []models.Payload{remote}, Options{})
		assert.Len(t, res.Conflicts, 1)
	})

	t.Run("synced local without baseline takes remote", func(t *testing.T) {
		rec := edited(local, nil)
		rec.Synced = true
		res := resolve(t, []models.Record{rec}, []models.Payload{remote}, Options{})
		assert.Equal(t, []models.Payload{remote}, res.Updates)
		assert.Empty(t, res.Conflicts)
	})
}

// ── suggestions ──────────────────────────────────────────────────────────────

func TestResolve_SuggestLastWriterWins(t *testing.T) {
	v0 := emo("e1", 3, base)

	tests := []struct {
		name   string
		local  models.Record
		remote []models.Payload
		want   models.ResolutionKind
	}{
		{
			name:   "newer local",
			local:  edited(emo("e1", 4, base.Add(2*time.Hour)), v0),
			remote: []models.Payload{emo("e1", 5, base.Add(time.Hour))},
			want:   models.ResolutionKeepLocal,
		},
		{
			name:   "newer remote",
			local:  edited(emo("e1", 4, base.Add(time.Hour)), v0),
			remote: []models.Payload{emo("e1", 5, base.Add(2*time.Hour))},
			want:   models.ResolutionKeepRemote,
		},
		{
			name:   "tie favours remote",
			local:  edited(emo("e1", 4, base.Add(time.Hour)), v0),
			remote: []models.Payload{emo("e1", 5, base.Add(time.Hour))},
			want:   models.ResolutionKeepRemote,
		},
		{
			name:  "remote deleted keeps local",
			local: edited(emo("e1", 4, base.Add(time.Hour)), v0),
			want:  models.ResolutionKeepLocal,
		},
		{
			name:   "local deleted keeps remote",
			local:  tombstone(v0, v0),
			remote: []models.Payload{emo("e1", 5, base.Add(time.Hour))},
			want:   models.ResolutionKeepRemote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolve(t, []models.Record{tt.local}, tt.remote, Options{Suggest: true})
			require.Len(t, res.Conflicts, 1)
			require.NotNil(t, res.Conflicts[0].SuggestedResolution)
			assert.Equal(t, tt.want, res.Conflicts[0].SuggestedResolution.Kind)
		})
	}
}

// ── determinism / filtering ──────────────────────────────────────────────────

func TestResolve_Deterministic(t *testing.T) {
	v0 := emo("b", 1, base)
	local := []models.Record{
		edited(emo("b", 2, base), v0),
		synced(emo("c", 1, base)),
		edited(emo("a", 5, base), emo("a", 1, base)),
	}
	remote := []models.Payload{
		emo("a", 9, base),
		emo("b", 3, base),
		emo("d", 1, base),
	}

	first := resolve(t, local, remote, Options{Suggest: true})
	reversedLocal := []models.Record{local[2], local[1], local[0]}
	reversedRemote := []models.Payload{remote[2], remote[1], remote[0]}
	second := resolve(t, reversedLocal, reversedRemote, Options{Suggest: true})

	assert.Equal(t, first, second)
	require.Len(t, first.Conflicts, 2)
	assert.Equal(t, "a", first.Conflicts[0].EntityID)
	assert.Equal(t, "b", first.Conflicts[1].EntityID)
	assert.NotEqual(t, first.Conflicts[0].ID, first.Conflicts[1].ID)
	assert.Equal(t, []string{"c"}, first.Deletes)
	assert.Equal(t, []models.Payload{emo("d", 1, base)}, first.Inserts)
}

func TestResolve_IgnoresOtherTypes(t *testing.T) {
	ce := models.CustomEmotion{ID: "c1", Name: "awe"}
	res := resolve(t, []models.Record{synced(ce)}, []models.Payload{ce, nil}, Options{})
	assert.True(t, res.Empty())
}

func TestResolve_HashError(t *testing.T) {
	r := &Resolver{hash: func(any) (string, error) { return "", errors.New("boom") }}
	_, err := r.Resolve(models.EmotionalRecordType, nil, []models.Payload{emo("e1", 1, base)}, Options{})
	assert.Error(t, err)
}
