// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"testing"
	"time"

	"github.com/MKhiriev/emotion-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan models.SyncState) models.SyncState {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "channel closed")
		return s
	case <-time.After(time.Second):
		t.Fatal("no state delivered")
		return models.SyncState{}
	}
}

func TestStateBroadcaster_InitialStateFirst(t *testing.T) {
	b := newStateBroadcaster()
	defer b.close()

	ch, cancel := b.subscribe(models.SyncState{Status: models.StatusOffline})
	defer cancel()

	b.publish(models.SyncState{Status: models.StatusIdle})

	assert.Equal(t, models.StatusOffline, receive(t, ch).Status)
	assert.Equal(t, models.StatusIdle, receive(t, ch).Status)
}

func TestStateBroadcaster_SlowReaderLosesNothing(t *testing.T) {
	b := newStateBroadcaster()
	defer b.close()

	ch, cancel := b.subscribe(models.SyncState{})
	defer cancel()

	// publish never blocks, even with nobody reading
	for i := 1; i <= 100; i++ {
		b.publish(models.SyncState{PendingItems: i})
	}

	for i := 0; i <= 100; i++ {
		assert.Equal(t, i, receive(t, ch).PendingItems)
	}
}

func TestStateBroadcaster_FanOut(t *testing.T) {
	b := newStateBroadcaster()
	defer b.close()

	first, cancelFirst := b.subscribe(models.SyncState{})
	defer cancelFirst()
	second, cancelSecond := b.subscribe(models.SyncState{})
	defer cancelSecond()

	b.publish(models.SyncState{Status: models.StatusSyncing})

	for _, ch := range []<-chan models.SyncState{first, second} {
		receive(t, ch)
		assert.Equal(t, models.StatusSyncing, receive(t, ch).Status)
	}
}

func TestStateBroadcaster_PublishedCopiesAreIndependent(t *testing.T) {
	b := newStateBroadcaster()
	defer b.close()

	ch, cancel := b.subscribe(models.SyncState{})
	defer cancel()
	receive(t, ch)

	state := models.SyncState{Conflicts: []models.SyncConflict{{ID: "c1"}}}
	b.publish(state)
	state.Conflicts[0].ID = "mutated"

	got := receive(t, ch)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, "c1", got.Conflicts[0].ID)
}

func TestStateBroadcaster_CancelClosesChannel(t *testing.T) {
	b := newStateBroadcaster()
	defer b.close()

	ch, cancel := b.subscribe(models.SyncState{})
	cancel()
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestStateBroadcaster_SubscribeAfterClose(t *testing.T) {
	b := newStateBroadcaster()
	b.close()

	ch, cancel := b.subscribe(models.SyncState{})
	defer cancel()

	_, ok := <-ch
	assert.False(t, ok)
}
