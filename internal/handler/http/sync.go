// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MKhiriev/emotion-sync/internal/app"
	"github.com/MKhiriev/emotion-sync/internal/logger"
	"github.com/MKhiriev/emotion-sync/internal/utils"
	"github.com/MKhiriev/emotion-sync/models"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
)

const streamWriteTimeout = 5 * time.Second

type deadLettersResponse struct {
	DeadLetters []models.DeadLetter `json:"dead_letters"`
	Length      int                 `json:"length"`
}

type forceSyncResponse struct {
	Completed bool             `json:"completed"`
	Message   string           `json:"message"`
	State     models.SyncState `json:"state"`
}

func (h *Handler) getSyncState(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.engine.CurrentState(), http.StatusOK)
}

// streamSyncState pushes every state transition as one JSON text message
// over a websocket until the client goes away or the engine stops.
func (h *Handler) streamSyncState(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Err(err).Str("func", "*Handler.streamSyncState").Msg("websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	states, cancel := h.engine.Subscribe()
	defer cancel()

	// the stream is one-way; CloseRead answers pings and notices the close
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "sync engine stopped")
				return
			}
			if err = writeState(ctx, conn, state); err != nil {
				log.Err(err).Str("func", "*Handler.streamSyncState").Msg("error writing state")
				return
			}
		}
	}
}

func writeState(ctx context.Context, conn *websocket.Conn, state models.SyncState) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, state)
}

func (h *Handler) getDeadLetters(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	letters, err := h.engine.DeadLetters(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.getDeadLetters").Msg("error reading dead letters")
		status, msg := responseFromError(err)
		utils.WriteError(w, msg, status)
		return
	}

	utils.WriteJSON(w, deadLettersResponse{DeadLetters: letters, Length: len(letters)}, http.StatusOK)
}

func (h *Handler) forceSync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var showConflicts bool
	if raw := r.URL.Query().Get("show_conflicts"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			log.Err(err).Str("func", "*Handler.forceSync").Msg("invalid show_conflicts")
			utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		}
		showConflicts = v
	}

	completed := h.engine.ForceSync(r.Context(), showConflicts)
	state := h.engine.CurrentState()

	msg := app.MsgSyncCompleted
	switch {
	case completed:
	case state.ErrorMessage != nil:
		msg = *state.ErrorMessage
	default:
		msg = state.Status.String()
	}

	utils.WriteJSON(w, forceSyncResponse{Completed: completed, Message: msg, State: state}, http.StatusOK)
}

func (h *Handler) resolveConflict(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	conflictID := chi.URLParam(r, "id")

	var resolution models.Resolution
	if err := json.NewDecoder(r.Body).Decode(&resolution); err != nil {
		log.Err(err).Str("func", "*Handler.resolveConflict").Msg("Invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	if err := h.engine.ResolveConflict(r.Context(), conflictID, resolution); err != nil {
		log.Err(err).
			Str("func", "*Handler.resolveConflict").
			Str("conflict_id", conflictID).
			Msg("error resolving conflict")
		status, msg := responseFromError(err)
		utils.WriteError(w, msg, status)
		return
	}

	utils.WriteJSON(w, h.engine.CurrentState(), http.StatusOK)
}
