// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package conflict computes the reconciliation plan between the local copy of
// an entity collection and the backend snapshot of the same collection.
//
// The resolver is pure: it performs no I/O, does not read the clock and
// returns the same plan for the same inputs. Applying the plan is the job of
// the sync engine.
package conflict

import (
	"fmt"
	"sort"

	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/models"
)

// Options tunes a single Resolve call.
type Options struct {
	// Suggest attaches a last-writer-wins SuggestedResolution to every
	// conflict. The suggestion is never applied automatically.
	Suggest bool
}

// Confirm moves the checkpoint of a local record whose content already
// equals the remote one.
type Confirm struct {
	ID   string
	Hash string
}

// Push is a local change that wins over an unchanged remote and must be
// uploaded.
type Push struct {
	ID        string
	Operation models.Operation
	// Payload is nil for deletes.
	Payload models.Payload
}

// Result is the reconciliation plan for one entity type. Every slice is
// sorted by entity id.
type Result struct {
	// Inserts are remote records absent locally.
	Inserts []models.Payload
	// Updates are remote records that replace an unchanged local copy.
	Updates []models.Payload
	// Deletes are ids of local records to purge because the backend no
	// longer has them.
	Deletes []string
	// Confirms are local records equal to the remote whose checkpoint lags.
	Confirms []Confirm
	// Pushes are local changes that win over an unchanged remote.
	Pushes []Push
	// Conflicts are records changed on both sides. DetectedAt is left zero.
	Conflicts []models.SyncConflict
}

// Empty reports whether the plan has nothing to apply.
func (r Result) Empty() bool {
	return len(r.Inserts) == 0 && len(r.Updates) == 0 && len(r.Deletes) == 0 &&
		len(r.Confirms) == 0 && len(r.Pushes) == 0 && len(r.Conflicts) == 0
}

// Resolver computes reconciliation plans.
type Resolver struct {
	hash func(v any) (string, error)
}

// NewResolver returns a Resolver hashing payloads with utils.HashPayload.
func NewResolver() *Resolver {
	return &Resolver{hash: utils.HashPayload}
}

// Resolve builds the plan for entityType from the local records (tombstones
// included) and the remote snapshot. Inputs of a different entity type are
// ignored.
//
// Per id:
//   - remote only: insert.
//   - local only, never synced: pending create, nothing to do.
//   - local only, synced and unmodified (or deleted on both sides): delete locally.
//   - local only, synced and modified: conflict with a nil remote version.
//   - both, same content: confirm the checkpoint if it lags.
//   - both, different content, checkpoint known: the side that changed since
//     the checkpoint wins; if both changed it is a conflict.
//   - both, different content, no checkpoint: the remote wins unless the
//     local record is unsynced, which is a conflict.
//
// An error is returned only when a remote payload cannot be hashed.
func (r *Resolver) Resolve(entityType models.EntityType, local []models.Record, remote []models.Payload, opts Options) (Result, error) {
	localByID := make(map[string]models.Record, len(local))
	for _, rec := range local {
		if rec.Type == entityType {
			localByID[rec.ID] = rec
		}
	}

	remoteByID := make(map[string]models.Payload, len(remote))
	remoteHash := make(map[string]string, len(remote))
	for _, p := range remote {
		if p == nil || p.EntityType() != entityType {
			continue
		}
		h, err := r.hash(p)
		if err != nil {
			return Result{}, fmt.Errorf("hash remote %s %s: %w", entityType, p.EntityID(), err)
		}
		remoteByID[p.EntityID()] = p
		remoteHash[p.EntityID()] = h
	}

	ids := make([]string, 0, len(localByID)+len(remoteByID))
	for id := range localByID {
		ids = append(ids, id)
	}
	for id := range remoteByID {
		if _, ok := localByID[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var res Result
	for _, id := range ids {
		rec, hasLocal := localByID[id]
		rp, hasRemote := remoteByID[id]

		switch {
		case !hasLocal:
			res.Inserts = append(res.Inserts, rp)
		case !hasRemote:
			r.resolveLocalOnly(&res, entityType, rec, opts)
		default:
			r.resolveBoth(&res, entityType, rec, rp, remoteHash[id], opts)
		}
	}

	return res, nil
}

func (r *Resolver) resolveLocalOnly(res *Result, t models.EntityType, rec models.Record, opts Options) {
	switch {
	case !rec.HasCheckpoint():
		// created offline, the queue still owns it
	case rec.Deleted || !rec.ModifiedSinceCheckpoint():
		res.Deletes = append(res.Deletes, rec.ID)
	default:
		res.Conflicts = append(res.Conflicts, r.newConflict(t, rec, nil, "", opts))
	}
}

func (r *Resolver) resolveBoth(res *Result, t models.EntityType, rec models.Record, rp models.Payload, rh string, opts Options) {
	if rec.Deleted {
		if rec.HasCheckpoint() && rh == rec.SyncedHash {
			res.Pushes = append(res.Pushes, Push{ID: rec.ID, Operation: models.OperationDelete})
			return
		}
		res.Conflicts = append(res.Conflicts, r.newConflict(t, rec, rp, rh, opts))
		return
	}

	if rec.Hash == rh {
		if rec.SyncedHash != rh {
			res.Confirms = append(res.Confirms, Confirm{ID: rec.ID, Hash: rh})
		}
		return
	}

	if !rec.HasCheckpoint() {
		if rec.Synced {
			res.Updates = append(res.Updates, rp)
			return
		}
		res.Conflicts = append(res.Conflicts, r.newConflict(t, rec, rp, rh, opts))
		return
	}

	localChanged := rec.Hash != rec.SyncedHash
	remoteChanged := rh != rec.SyncedHash

	switch {
	case remoteChanged && !localChanged:
		res.Updates = append(res.Updates, rp)
	case localChanged && !remoteChanged:
		res.Pushes = append(res.Pushes, Push{ID: rec.ID, Operation: models.OperationUpdate, Payload: rec.Payload})
	default:
		res.Conflicts = append(res.Conflicts, r.newConflict(t, rec, rp, rh, opts))
	}
}

func (r *Resolver) newConflict(t models.EntityType, rec models.Record, rp models.Payload, rh string, opts Options) models.SyncConflict {
	var localVersion models.Payload
	localHash := "deleted"
	if !rec.Deleted {
		localVersion = rec.Payload
		localHash = rec.Hash
	}
	if rp == nil {
		rh = "deleted"
	}

	c := models.SyncConflict{
		ID:            utils.DeterministicID(t.String(), rec.ID, localHash, rh),
		EntityType:    t,
		EntityID:      rec.ID,
		LocalVersion:  localVersion,
		RemoteVersion: rp,
	}
	if opts.Suggest {
		c.SuggestedResolution = suggest(localVersion, rp)
	}

	return c
}

// suggest picks the most recently modified side. Ties and deletions on
// either side favour the remote copy.
func suggest(local, remote models.Payload) *models.Resolution {
	switch {
	case local == nil:
		return &models.Resolution{Kind: models.ResolutionKeepRemote}
	case remote == nil:
		return &models.Resolution{Kind: models.ResolutionKeepLocal}
	case local.ModifiedAt().After(remote.ModifiedAt()):
		return &models.Resolution{Kind: models.ResolutionKeepLocal}
	default:
		return &models.Resolution{Kind: models.ResolutionKeepRemote}
	}
}
