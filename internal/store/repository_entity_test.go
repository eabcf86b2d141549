// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/models"
)

var entityRowColumns = []string{"entity_type", "entity_id", "payload", "hash", "synced_hash", "deleted", "updated_at"}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestRepo(t *testing.T, db *sql.DB, now time.Time) *entityRepository {
	t.Helper()
	repo := NewEntityRepository(&DB{DB: db, logger: logger.Nop()}, logger.Nop()).(*entityRepository)
	repo.now = func() time.Time { return now }
	return repo
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func emotion(id, name string) models.EmotionalRecord {
	return models.EmotionalRecord{
		ID:         id,
		Emotion:    name,
		Intensity:  5,
		RecordedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func payloadJSON(t *testing.T, p models.Payload) []byte {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return b
}

// ── reads ─────────────────────────────────────────────────────────────────────

func TestEntityRepository_GetAll(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	e1, e2 := emotion("e1", "joy"), emotion("e2", "calm")
	h1 := utils.MustHashPayload(e1)
	h2 := utils.MustHashPayload(e2)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantLen int
		check   func(t *testing.T, recs []models.Record)
		wantErr error
	}{
		{
			name: "synced and tombstoned rows",
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(entityRowColumns).
					AddRow("emotional_record", "e1", payloadJSON(t, e1), h1, h1, false, now).
					AddRow("emotional_record", "e2", payloadJSON(t, e2), h2, "", true, now)
				mock.ExpectQuery(`SELECT .+ FROM entities WHERE entity_type = \? ORDER BY entity_id`).
					WithArgs(models.EmotionalRecordType).
					WillReturnRows(rows)
			},
			wantLen: 2,
			check: func(t *testing.T, recs []models.Record) {
				assert.Equal(t, e1, recs[0].Payload)
				assert.True(t, recs[0].Synced)
				assert.True(t, recs[1].Deleted)
				assert.False(t, recs[1].Synced)
				assert.False(t, recs[1].HasCheckpoint())
			},
		},
		{
			name: "empty result",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM entities`).
					WillReturnRows(sqlmock.NewRows(entityRowColumns))
			},
			wantLen: 0,
		},
		{
			name: "query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .+ FROM entities`).WillReturnError(errors.New("disk I/O error"))
			},
			wantErr: ErrExecutingQuery,
		},
		{
			name: "undecodable payload",
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(entityRowColumns).
					AddRow("emotional_record", "e1", []byte(`{"id":`), h1, h1, false, now)
				mock.ExpectQuery(`SELECT .+ FROM entities`).WillReturnRows(rows)
			},
			wantErr: ErrScanningRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			tt.setup(mock)

			recs, err := newTestRepo(t, db, now).GetAll(testContext(), models.EmotionalRecordType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Len(t, recs, tt.wantLen)
				if tt.check != nil {
					tt.check(t, recs)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEntityRepository_GetUnsynced(t *testing.T) {
	now := time.Now().UTC()
	e1 := emotion("e1", "joy")
	h1 := utils.MustHashPayload(e1)

	db, mock := newTestDB(t)
	mock.ExpectQuery(`SELECT .+ FROM entities WHERE entity_type = \? AND \(deleted = 1 OR hash <> synced_hash\)`).
		WithArgs(models.EmotionalRecordType).
		WillReturnRows(sqlmock.NewRows(entityRowColumns).
			AddRow("emotional_record", "e1", payloadJSON(t, e1), h1, "old", false, now))

	recs, err := newTestRepo(t, db, now).GetUnsynced(testContext(), models.EmotionalRecordType)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].ModifiedSinceCheckpoint())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepository_Get_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectQuery(`SELECT .+ FROM entities WHERE entity_type = \? AND entity_id = \?`).
		WithArgs(models.CustomEmotionType, "missing").
		WillReturnRows(sqlmock.NewRows(entityRowColumns))

	_, err := newTestRepo(t, db, time.Now()).Get(testContext(), models.CustomEmotionType, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── writes ────────────────────────────────────────────────────────────────────

func TestEntityRepository_Insert_MovesCheckpoint(t *testing.T) {
	now := time.Now().UTC()
	e1 := emotion("e1", "joy")
	h1 := utils.MustHashPayload(e1)

	db, mock := newTestDB(t)
	mock.ExpectExec(`INSERT INTO entities .+ synced_hash = excluded.synced_hash`).
		WithArgs(models.EmotionalRecordType, "e1", payloadJSON(t, e1), h1, h1, false, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, newTestRepo(t, db, now).Insert(testContext(), e1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepository_SaveLocal_KeepsCheckpoint(t *testing.T) {
	now := time.Now().UTC()
	e1 := emotion("e1", "joy")
	h1 := utils.MustHashPayload(e1)

	db, mock := newTestDB(t)
	mock.ExpectExec(`INSERT INTO entities .+ ON CONFLICT`).
		WithArgs(models.EmotionalRecordType, "e1", payloadJSON(t, e1), h1, "", false, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, newTestRepo(t, db, now).SaveLocal(testContext(), e1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepository_SaveLocal_NilPayload(t *testing.T) {
	db, _ := newTestDB(t)
	err := newTestRepo(t, db, time.Now()).SaveLocal(testContext(), nil)
	assert.ErrorIs(t, err, ErrNilPayload)
}

func TestEntityRepository_ExecErrors(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		call    func(r *entityRepository) error
		wantErr error
	}{
		{
			name: "mark deleted",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE entities SET deleted = \?, updated_at = \?`).
					WithArgs(true, now, models.EmotionalRecordType, "e1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			call: func(r *entityRepository) error {
				return r.MarkDeleted(testContext(), models.EmotionalRecordType, "e1")
			},
		},
		{
			name: "mark deleted unknown",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE entities SET deleted`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			call: func(r *entityRepository) error {
				return r.MarkDeleted(testContext(), models.EmotionalRecordType, "e1")
			},
			wantErr: ErrRecordNotFound,
		},
		{
			name: "mark synced",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE entities SET synced_hash = \?`).
					WithArgs("h", models.EmotionalRecordType, "e1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			call: func(r *entityRepository) error {
				return r.MarkSynced(testContext(), models.EmotionalRecordType, "e1", "h")
			},
		},
		{
			name: "mark synced driver error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE entities SET synced_hash`).WillReturnError(errors.New("locked"))
			},
			call: func(r *entityRepository) error {
				return r.MarkSynced(testContext(), models.EmotionalRecordType, "e1", "h")
			},
			wantErr: ErrExecutingStatement,
		},
		{
			name: "purge missing row is not an error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM entities`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			call: func(r *entityRepository) error {
				return r.Purge(testContext(), models.EmotionalRecordType, "e1")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			tt.setup(mock)

			err := tt.call(newTestRepo(t, db, now))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEntityRepository_Rename(t *testing.T) {
	now := time.Now().UTC()
	local := emotion("local-1", "joy")
	renamed := models.WithID(local, "srv-9")

	db, mock := newTestDB(t)
	mock.ExpectQuery(`SELECT .+ FROM entities WHERE entity_type = \? AND entity_id = \?`).
		WithArgs(models.EmotionalRecordType, "local-1").
		WillReturnRows(sqlmock.NewRows(entityRowColumns).
			AddRow("emotional_record", "local-1", payloadJSON(t, local), utils.MustHashPayload(local), "", false, now))
	mock.ExpectQuery(`SELECT .+ FROM entities WHERE entity_type = \? AND entity_id = \?`).
		WithArgs(models.EmotionalRecordType, "srv-9").
		WillReturnRows(sqlmock.NewRows(entityRowColumns))
	mock.ExpectExec(`UPDATE entities SET entity_id = \?, payload = \?, hash = \?, updated_at = \?`).
		WithArgs("srv-9", payloadJSON(t, renamed), utils.MustHashPayload(renamed), now, models.EmotionalRecordType, "local-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, newTestRepo(t, db, now).Rename(testContext(), models.EmotionalRecordType, "local-1", "srv-9"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepository_Rename_TargetTaken(t *testing.T) {
	now := time.Now().UTC()
	local := emotion("local-1", "joy")
	other := emotion("srv-9", "anger")

	db, mock := newTestDB(t)
	mock.ExpectQuery(`SELECT .+ FROM entities`).
		WillReturnRows(sqlmock.NewRows(entityRowColumns).
			AddRow("emotional_record", "local-1", payloadJSON(t, local), "h", "", false, now))
	mock.ExpectQuery(`SELECT .+ FROM entities`).
		WillReturnRows(sqlmock.NewRows(entityRowColumns).
			AddRow("emotional_record", "srv-9", payloadJSON(t, other), "h2", "h2", false, now))

	err := newTestRepo(t, db, now).Rename(testContext(), models.EmotionalRecordType, "local-1", "srv-9")
	assert.ErrorIs(t, err, ErrRecordAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
