// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/emotion-sync/models"
)

const entitiesTable = "entities"

var entityColumns = []string{
	"entity_type",
	"entity_id",
	"payload",
	"hash",
	"synced_hash",
	"deleted",
	"updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func selectEntities(t models.EntityType) sq.SelectBuilder {
	return psql.Select(entityColumns...).
		From(entitiesTable).
		Where("entity_type = ?", t).
		OrderBy("entity_id")
}

func buildGetAllQuery(t models.EntityType) (string, []any, error) {
	return selectEntities(t).ToSql()
}

func buildGetUnsyncedQuery(t models.EntityType) (string, []any, error) {
	return selectEntities(t).
		Where("(deleted = 1 OR hash <> synced_hash)").
		ToSql()
}

func buildGetQuery(t models.EntityType, id string) (string, []any, error) {
	return selectEntities(t).
		Where("entity_id = ?", id).
		Limit(1).
		ToSql()
}

// buildUpsertQuery inserts or replaces the content of a record. When
// moveCheckpoint is set the checkpoint follows the new hash (remote content);
// otherwise an existing checkpoint is preserved (user mutation).
func buildUpsertQuery(t models.EntityType, id string, payload []byte, hash string, moveCheckpoint bool, now time.Time) (string, []any, error) {
	syncedHash := ""
	onConflict := "ON CONFLICT (entity_type, entity_id) DO UPDATE SET " +
		"payload = excluded.payload, hash = excluded.hash, deleted = 0, updated_at = excluded.updated_at"
	if moveCheckpoint {
		syncedHash = hash
		onConflict += ", synced_hash = excluded.synced_hash"
	}

	return psql.Insert(entitiesTable).
		Columns(entityColumns...).
		Values(t, id, payload, hash, syncedHash, false, now).
		Suffix(onConflict).
		ToSql()
}

func buildMarkDeletedQuery(t models.EntityType, id string, now time.Time) (string, []any, error) {
	return psql.Update(entitiesTable).
		Set("deleted", true).
		Set("updated_at", now).
		Where("entity_type = ? AND entity_id = ?", t, id).
		ToSql()
}

func buildMarkSyncedQuery(t models.EntityType, id, hash string) (string, []any, error) {
	return psql.Update(entitiesTable).
		Set("synced_hash", hash).
		Where("entity_type = ? AND entity_id = ?", t, id).
		ToSql()
}

func buildPurgeQuery(t models.EntityType, id string) (string, []any, error) {
	return psql.Delete(entitiesTable).
		Where("entity_type = ? AND entity_id = ?", t, id).
		ToSql()
}

func buildRenameQuery(t models.EntityType, oldID, newID string, payload []byte, hash string, now time.Time) (string, []any, error) {
	return psql.Update(entitiesTable).
		Set("entity_id", newID).
		Set("payload", payload).
		Set("hash", hash).
		Set("updated_at", now).
		Where("entity_type = ? AND entity_id = ?", t, oldID).
		ToSql()
}
