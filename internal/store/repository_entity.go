// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/models"
)

// entityRepository is the sqlite-backed [EntityStore].
type entityRepository struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewEntityRepository constructs an [EntityStore] on top of a migrated
// sqlite connection.
func NewEntityRepository(db *DB, logger *logger.Logger) EntityStore {
	logger.Debug().Msg("creating entity repository")
	return &entityRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *entityRepository) GetAll(ctx context.Context, t models.EntityType) ([]models.Record, error) {
	query, args, err := buildGetAllQuery(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryRecords(ctx, "entityRepository.GetAll", query, args)
}

func (r *entityRepository) GetUnsynced(ctx context.Context, t models.EntityType) ([]models.Record, error) {
	query, args, err := buildGetUnsyncedQuery(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryRecords(ctx, "entityRepository.GetUnsynced", query, args)
}

func (r *entityRepository) Get(ctx context.Context, t models.EntityType, id string) (models.Record, error) {
	query, args, err := buildGetQuery(t, id)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	records, err := r.queryRecords(ctx, "entityRepository.Get", query, args)
	if err != nil {
		return models.Record{}, err
	}
	if len(records) == 0 {
		return models.Record{}, ErrRecordNotFound
	}

	return records[0], nil
}

func (r *entityRepository) Insert(ctx context.Context, p models.Payload) error {
	return r.upsert(ctx, "entityRepository.Insert", p, true)
}

func (r *entityRepository) SaveLocal(ctx context.Context, p models.Payload) error {
	return r.upsert(ctx, "entityRepository.SaveLocal", p, false)
}

func (r *entityRepository) MarkDeleted(ctx context.Context, t models.EntityType, id string) error {
	query, args, err := buildMarkDeletedQuery(t, id, r.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execOne(ctx, "entityRepository.MarkDeleted", query, args)
}

func (r *entityRepository) MarkSynced(ctx context.Context, t models.EntityType, id, hash string) error {
	query, args, err := buildMarkSyncedQuery(t, id, hash)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execOne(ctx, "entityRepository.MarkSynced", query, args)
}

func (r *entityRepository) Purge(ctx context.Context, t models.EntityType, id string) error {
	query, args, err := buildPurgeQuery(t, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.execOne(ctx, "entityRepository.Purge", query, args)
	if errors.Is(err, ErrRecordNotFound) {
		return nil
	}
	return err
}

func (r *entityRepository) Rename(ctx context.Context, t models.EntityType, oldID, newID string) error {
	log := logger.FromContext(ctx)

	if oldID == newID {
		return nil
	}

	current, err := r.Get(ctx, t, oldID)
	if err != nil {
		return err
	}
	if _, err = r.Get(ctx, t, newID); err == nil {
		return ErrRecordAlreadyExists
	} else if !errors.Is(err, ErrRecordNotFound) {
		return err
	}

	data, hash, err := encodePayload(models.WithID(current.Payload, newID))
	if err != nil {
		return err
	}

	query, args, err := buildRenameQuery(t, oldID, newID, data, hash, r.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if err = r.execOne(ctx, "entityRepository.Rename", query, args); err != nil {
		return err
	}

	log.Debug().
		Str("func", "entityRepository.Rename").
		Str("entity_type", t.String()).
		Str("old_id", oldID).
		Str("new_id", newID).
		Msg("record re-keyed")

	return nil
}

func (r *entityRepository) upsert(ctx context.Context, fn string, p models.Payload, moveCheckpoint bool) error {
	log := logger.FromContext(ctx)

	data, hash, err := encodePayload(p)
	if err != nil {
		return err
	}

	query, args, err := buildUpsertQuery(p.EntityType(), p.EntityID(), data, hash, moveCheckpoint, r.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", fn).
			Str("entity_type", p.EntityType().String()).
			Str("entity_id", p.EntityID()).
			Msg("failed to upsert entity")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// execOne runs a statement that must touch exactly one row.
func (r *entityRepository) execOne(ctx context.Context, fn, query string, args []any) error {
	log := logger.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to execute statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (r *entityRepository) queryRecords(ctx context.Context, fn, query string, args []any) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to query entities")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", fn).Msg("failed to scan entity row")
			return nil, scanErr
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", fn).Msg("error iterating entity rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (models.Record, error) {
	var (
		rec     models.Record
		payload []byte
	)

	err := rows.Scan(
		&rec.Type,
		&rec.ID,
		&payload,
		&rec.Hash,
		&rec.SyncedHash,
		&rec.Deleted,
		&rec.UpdatedAt,
	)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	rec.Payload, err = models.DecodePayload(rec.Type, payload)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	finishRecord(&rec)

	return rec, nil
}
