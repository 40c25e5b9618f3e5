package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleRound2Players(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "auction_id is required")
		return
	}
	ps, err := s.round2.AvailablePlayers(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ps)
}

func (s *Server) handleRound2Selections(w http.ResponseWriter, r *http.Request) {
	m := managerFrom(r.Context())
	id, ok := auctionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "auction_id is required")
		return
	}
	sels, err := s.round2.Selections(r.Context(), id, m.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sels)
}

type selectRequest struct {
	AuctionID int64 `json:"auction_id"`
	PlayerID  int64 `json:"player_id"`
}

func (s *Server) handleRound2Select(w http.ResponseWriter, r *http.Request) {
	m := managerFrom(r.Context())

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AuctionID <= 0 || req.PlayerID <= 0 {
		respondError(w, http.StatusBadRequest, "auction_id and player_id are required")
		return
	}
	if err := s.round2.Select(r.Context(), req.AuctionID, m.ID, req.PlayerID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "selected"})
}

func (s *Server) handleRound2Deselect(w http.ResponseWriter, r *http.Request) {
	m := managerFrom(r.Context())
	auctionID, ok := auctionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "auction_id is required")
		return
	}
	playerID, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil || playerID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	if err := s.round2.Deselect(r.Context(), auctionID, m.ID, playerID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
