// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"sync"

	"github.com/MKhiriev/emotion-sync/models"
)

// stateBroadcaster fans published states out to subscribers. Every
// subscriber owns an unbounded mailbox, so a slow reader delays only itself
// and never loses a transition.
type stateBroadcaster struct {
	mu     sync.Mutex
	subs   map[int]*stateSubscriber
	nextID int
	closed bool
}

type stateSubscriber struct {
	out    chan models.SyncState
	signal chan struct{}
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	mailbox []models.SyncState
}

func newStateBroadcaster() *stateBroadcaster {
	return &stateBroadcaster{subs: make(map[int]*stateSubscriber)}
}

// subscribe registers a subscriber whose first delivery is initial.
func (b *stateBroadcaster) subscribe(initial models.SyncState) (<-chan models.SyncState, func()) {
	sub := &stateSubscriber{
		out:     make(chan models.SyncState),
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		mailbox: []models.SyncState{initial},
	}
	sub.signal <- struct{}{}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.out)
		return sub.out, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	go sub.run()

	return sub.out, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		sub.stop()
	}
}

// publish appends s to every mailbox. It never blocks on readers.
func (b *stateBroadcaster) publish(s models.SyncState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		sub.push(s.Clone())
	}
}

// close ends every subscription. Later subscriptions receive a closed
// channel.
func (b *stateBroadcaster) close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[int]*stateSubscriber)
	b.closed = true
	b.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (s *stateSubscriber) push(state models.SyncState) {
	s.mu.Lock()
	s.mailbox = append(s.mailbox, state)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *stateSubscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *stateSubscriber) run() {
	defer close(s.out)

	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}

		s.mu.Lock()
		batch := s.mailbox
		s.mailbox = nil
		s.mu.Unlock()

		for _, state := range batch {
			select {
			case s.out <- state:
			case <-s.done:
				return
			}
		}
	}
}
