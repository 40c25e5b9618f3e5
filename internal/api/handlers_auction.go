package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// auctionIDParam reads the auction_id query parameter.
func auctionIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("auction_id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleAuctionState(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "auction_id is required")
		return
	}
	snap, err := s.auctions.Snapshot(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLiveAuction(w http.ResponseWriter, r *http.Request) {
	snap, err := s.auctions.Live(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

type bidRequest struct {
	AuctionID int64 `json:"auction_id"`
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	m := managerFrom(r.Context())

	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AuctionID <= 0 {
		respondError(w, http.StatusBadRequest, "auction_id is required")
		return
	}

	snap, err := s.auctions.PlaceBid(r.Context(), req.AuctionID, m.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFreeze(w http.ResponseWriter, r *http.Request) {
	m := managerFrom(r.Context())
	id, ok := auctionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "auction_id is required")
		return
	}
	verdict, err := s.auctions.Freeze(r.Context(), id, m.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	m := managerFrom(r.Context())
	id, ok := auctionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "auction_id is required")
		return
	}
	// Admins may inspect any manager's roster.
	managerID := m.ID
	if m.IsAdmin() {
		if q := r.URL.Query().Get("manager_id"); q != "" {
			if v, err := strconv.ParseInt(q, 10, 64); err == nil {
				managerID = v
			}
		}
	}
	roster, err := s.auctions.Roster(r.Context(), id, managerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}
