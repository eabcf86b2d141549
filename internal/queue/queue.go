// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package queue

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/models"
)

const (
	queueDirPerm  = fs.FileMode(0o700)
	queueFilePerm = fs.FileMode(0o600)

	// queueOpenTimeout is the maximum time to wait for the bolt file lock.
	queueOpenTimeout = 5 * time.Second
)

var (
	// pendingBucket maps a big-endian sequence number to the JSON item, so a
	// cursor walks items in enqueue order.
	pendingBucket = []byte("pending")
	// keysBucket maps "type/id" to the sequence of the active item.
	keysBucket = []byte("keys")
	// idsBucket maps queue id to the sequence of the active item.
	idsBucket = []byte("ids")
	// deadBucket holds dead letters in the order they failed.
	deadBucket = []byte("dead_letters")
)

// ChangeQueue is the durable FIFO of pending local mutations.
type ChangeQueue struct {
	db     *bolt.DB
	logger *logger.Logger
	newID  func() string
	now    func() time.Time
}

// Open opens the queue database at path, creating it and its buckets if they
// do not exist.
func Open(path string, log *logger.Logger) (*ChangeQueue, error) {
	if err := os.MkdirAll(filepath.Dir(path), queueDirPerm); err != nil {
		return nil, fmt.Errorf("creating queue directory: %w", err)
	}

	db, err := bolt.Open(path, queueFilePerm, &bolt.Options{Timeout: queueOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening queue db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pendingBucket, keysBucket, idsBucket, deadBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing queue db: %w", err)
	}

	gen := utils.NewUUIDGenerator()

	return &ChangeQueue{
		db:     db,
		logger: log,
		newID:  gen.Generate,
		now:    time.Now,
	}, nil
}

// Close closes the database.
func (q *ChangeQueue) Close() error {
	return q.db.Close()
}

// Enqueue adds item to the tail of the queue, or supersedes the active item
// of the same entity in place. It returns the stored item.
func (q *ChangeQueue) Enqueue(item models.SyncItem) (models.SyncItem, error) {
	if err := validateItem(item); err != nil {
		return models.SyncItem{}, err
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = q.now().UTC()
	}

	var stored models.SyncItem
	err := q.db.Update(func(tx *bolt.Tx) error {
		pending := tx.Bucket(pendingBucket)
		keys := tx.Bucket(keysBucket)
		key := []byte(item.Key())

		if seq := keys.Get(key); seq != nil {
			seq = append([]byte(nil), seq...)
			existing, err := decodeItem(pending.Get(seq))
			if err != nil {
				return err
			}
			stored = supersede(existing, item)
			return putItem(pending, seq, stored)
		}

		n, err := pending.NextSequence()
		if err != nil {
			return err
		}
		seq := encodeSeq(n)

		stored = item
		if stored.QueueID == "" {
			stored.QueueID = q.newID()
		}
		stored.RetryCount = 0
		stored.Revision = 1

		if err = putItem(pending, seq, stored); err != nil {
			return err
		}
		if err = keys.Put(key, seq); err != nil {
			return err
		}
		return tx.Bucket(idsBucket).Put([]byte(stored.QueueID), seq)
	})
	if err != nil {
		return models.SyncItem{}, fmt.Errorf("enqueue %s: %w", item.Key(), err)
	}

	q.logger.Debug().
		Str("func", "ChangeQueue.Enqueue").
		Str("queue_id", stored.QueueID).
		Str("key", stored.Key()).
		Str("operation", string(stored.Operation)).
		Int64("revision", stored.Revision).
		Msg("item enqueued")

	return stored, nil
}

// supersede merges a newer mutation into the active item of the same entity.
func supersede(existing, next models.SyncItem) models.SyncItem {
	op := next.Operation
	if existing.Operation == models.OperationCreate && next.Operation == models.OperationUpdate {
		op = models.OperationCreate
	}

	existing.Operation = op
	existing.Payload = next.Payload
	existing.Timestamp = next.Timestamp
	existing.Revision++

	return existing
}

// DequeueUpTo returns up to n items from the head of the queue without
// removing them.
func (q *ChangeQueue) DequeueUpTo(n int) ([]models.SyncItem, error) {
	items := make([]models.SyncItem, 0, max(n, 0))
	if n <= 0 {
		return items, nil
	}

	err := q.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(pendingBucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < n; k, v = c.Next() {
			item, err := decodeItem(v)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}

	return items, nil
}

// MarkProcessed removes the item with queueID if its revision still equals
// revision. It reports whether the item was removed; a superseded item is
// left in place for the next pass.
func (q *ChangeQueue) MarkProcessed(queueID string, revision int64) (bool, error) {
	removed := false
	err := q.db.Update(func(tx *bolt.Tx) error {
		seq := tx.Bucket(idsBucket).Get([]byte(queueID))
		if seq == nil {
			return nil
		}

		item, err := decodeItem(tx.Bucket(pendingBucket).Get(seq))
		if err != nil {
			return err
		}
		if item.Revision != revision {
			return nil
		}

		removed = true
		return deleteItem(tx, seq, item)
	})
	if err != nil {
		return false, fmt.Errorf("mark processed %s: %w", queueID, err)
	}

	return removed, nil
}

// IncrementRetryCount bumps the retry counter of the item and returns the new
// value.
func (q *ChangeQueue) IncrementRetryCount(queueID string) (int, error) {
	var count int
	err := q.db.Update(func(tx *bolt.Tx) error {
		seq := tx.Bucket(idsBucket).Get([]byte(queueID))
		if seq == nil {
			return ErrItemNotFound
		}
		seq = append([]byte(nil), seq...)

		pending := tx.Bucket(pendingBucket)
		item, err := decodeItem(pending.Get(seq))
		if err != nil {
			return err
		}
		item.RetryCount++
		count = item.RetryCount

		return putItem(pending, seq, item)
	})
	if err != nil {
		return 0, fmt.Errorf("increment retry count %s: %w", queueID, err)
	}

	return count, nil
}

// MoveToDeadLetter removes the item from the active queue and records it in
// the dead-letter store with reason.
func (q *ChangeQueue) MoveToDeadLetter(queueID, reason string) error {
	err := q.db.Update(func(tx *bolt.Tx) error {
		seq := tx.Bucket(idsBucket).Get([]byte(queueID))
		if seq == nil {
			return ErrItemNotFound
		}

		item, err := decodeItem(tx.Bucket(pendingBucket).Get(seq))
		if err != nil {
			return err
		}
		if err = deleteItem(tx, seq, item); err != nil {
			return err
		}

		dead := tx.Bucket(deadBucket)
		n, err := dead.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(models.DeadLetter{Item: item, Reason: reason, FailedAt: q.now().UTC()})
		if err != nil {
			return err
		}
		return dead.Put(encodeSeq(n), data)
	})
	if err != nil {
		return fmt.Errorf("move %s to dead letters: %w", queueID, err)
	}

	q.logger.Warn().
		Str("func", "ChangeQueue.MoveToDeadLetter").
		Str("queue_id", queueID).
		Str("reason", reason).
		Msg("item dead-lettered")

	return nil
}

// PendingCount returns the number of active items. Dead letters are not
// counted.
func (q *ChangeQueue) PendingCount() (int, error) {
	var count int
	err := q.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(pendingBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Remove drops the active item of the entity, if any, and reports whether
// one existed.
func (q *ChangeQueue) Remove(t models.EntityType, id string) (bool, error) {
	removed := false
	err := q.db.Update(func(tx *bolt.Tx) error {
		seq := tx.Bucket(keysBucket).Get([]byte(models.ItemKey(t, id)))
		if seq == nil {
			return nil
		}

		item, err := decodeItem(tx.Bucket(pendingBucket).Get(seq))
		if err != nil {
			return err
		}

		removed = true
		return deleteItem(tx, seq, item)
	})
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", models.ItemKey(t, id), err)
	}

	return removed, nil
}

// Rekey moves the active item of an entity created offline to the id the
// backend assigned. A pending create becomes an update since the entity now
// exists remotely. It is a no-op when the entity has no active item.
func (q *ChangeQueue) Rekey(t models.EntityType, oldID, newID string) error {
	if oldID == newID {
		return nil
	}

	err := q.db.Update(func(tx *bolt.Tx) error {
		keys := tx.Bucket(keysBucket)
		oldKey := []byte(models.ItemKey(t, oldID))
		newKey := []byte(models.ItemKey(t, newID))

		seq := keys.Get(oldKey)
		if seq == nil {
			return nil
		}
		if keys.Get(newKey) != nil {
			return ErrKeyTaken
		}
		// values returned by Get are only valid until the next write
		seq = append([]byte(nil), seq...)

		pending := tx.Bucket(pendingBucket)
		item, err := decodeItem(pending.Get(seq))
		if err != nil {
			return err
		}

		item.ID = newID
		if item.Payload != nil {
			item.Payload = models.WithID(item.Payload, newID)
		}
		if item.Operation == models.OperationCreate {
			item.Operation = models.OperationUpdate
		}
		item.Revision++

		if err = putItem(pending, seq, item); err != nil {
			return err
		}
		if err = keys.Delete(oldKey); err != nil {
			return err
		}
		return keys.Put(newKey, seq)
	})
	if err != nil {
		return fmt.Errorf("rekey %s to %s: %w", models.ItemKey(t, oldID), newID, err)
	}

	return nil
}

// DeadLetters returns every dead-lettered item, oldest first.
func (q *ChangeQueue) DeadLetters() ([]models.DeadLetter, error) {
	letters := make([]models.DeadLetter, 0)
	err := q.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(deadBucket).ForEach(func(_, v []byte) error {
			var dl models.DeadLetter
			if err := json.Unmarshal(v, &dl); err != nil {
				return err
			}
			letters = append(letters, dl)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read dead letters: %w", err)
	}

	return letters, nil
}

func validateItem(item models.SyncItem) error {
	switch {
	case !item.Type.Valid():
		return fmt.Errorf("%w: entity type %q", ErrInvalidItem, item.Type)
	case !item.Operation.Valid():
		return fmt.Errorf("%w: operation %q", ErrInvalidItem, item.Operation)
	case item.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidItem)
	case item.Operation != models.OperationDelete && item.Payload == nil:
		return fmt.Errorf("%w: %s without payload", ErrInvalidItem, item.Operation)
	}
	return nil
}

func deleteItem(tx *bolt.Tx, seq []byte, item models.SyncItem) error {
	seq = append([]byte(nil), seq...)
	if err := tx.Bucket(keysBucket).Delete([]byte(item.Key())); err != nil {
		return err
	}
	if err := tx.Bucket(idsBucket).Delete([]byte(item.QueueID)); err != nil {
		return err
	}
	return tx.Bucket(pendingBucket).Delete(seq)
}

func putItem(b *bolt.Bucket, seq []byte, item models.SyncItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return b.Put(seq, data)
}

func decodeItem(data []byte) (models.SyncItem, error) {
	if data == nil {
		return models.SyncItem{}, ErrItemNotFound
	}
	var item models.SyncItem
	if err := json.Unmarshal(data, &item); err != nil {
		return models.SyncItem{}, fmt.Errorf("decode queue item: %w", err)
	}
	return item, nil
}

func encodeSeq(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
