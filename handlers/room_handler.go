package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"daoHiveAPI/internal/store"
)

// RoomHandler serves the read side of the derived documents: room profiles,
// leaderboards and challenges. The presentation layer consumes these
// directly; all writes happen through the trigger handlers.
type RoomHandler struct {
	store store.Store
}

func NewRoomHandler(st store.Store) *RoomHandler {
	return &RoomHandler{store: st}
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	roomID := mux.Vars(r)["roomId"]
	room, err := h.store.Room(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Room not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not load room")
		return
	}

	respondWithJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	roomID := mux.Vars(r)["roomId"]
	entries, err := h.store.LeaderboardByRoom(ctx, roomID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not load leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *RoomHandler) GetRoomChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	roomID := mux.Vars(r)["roomId"]
	challenges, err := h.store.ChallengesByRoom(ctx, roomID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Could not load challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *RoomHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	challengeID := mux.Vars(r)["challengeId"]
	c, err := h.store.Challenge(ctx, challengeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Challenge not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Could not load challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, c)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
