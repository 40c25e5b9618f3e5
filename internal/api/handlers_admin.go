package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nbbluestudios/crickbid/internal/auction"
	"github.com/nbbluestudios/crickbid/internal/models"
)

// auctionIDPath reads the {auctionID} route parameter.
func auctionIDPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "auctionID"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	as, err := s.auctions.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, as)
}

type createAuctionRequest struct {
	Name             string    `json:"auction_name"`
	TournamentFilter string    `json:"tournament_filter"`
	ClassFilter      string    `json:"class_filter"`
	RoleFilter       string    `json:"role_filter"`
	ScheduledAt      time.Time `json:"scheduled_at"`
}

func (s *Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	var req createAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := s.auctions.Create(r.Context(), auction.CreateParams{
		Name:             req.Name,
		TournamentFilter: req.TournamentFilter,
		ClassFilter:      models.ClassBand(req.ClassFilter),
		RoleFilter:       models.PlayerRole(req.RoleFilter),
		ScheduledAt:      req.ScheduledAt,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (s *Server) handleDeleteAuction(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDPath(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}
	if err := s.auctions.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// adminAction wraps the one-shot auction transitions.
func (s *Server) adminAction(fn func(r *http.Request, auctionID int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auctionIDPath(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid auction id")
			return
		}
		if err := fn(r, id); err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.adminAction(func(r *http.Request, id int64) error {
		return s.auctions.Pause(r.Context(), id)
	})(w, r)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.adminAction(func(r *http.Request, id int64) error {
		return s.auctions.Resume(r.Context(), id)
	})(w, r)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.adminAction(func(r *http.Request, id int64) error {
		return s.auctions.Skip(r.Context(), id)
	})(w, r)
}

type filtersRequest struct {
	ClassFilter string `json:"class_filter"`
	RoleFilter  string `json:"role_filter"`
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDPath(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}
	var req filtersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidClass(req.ClassFilter) || !models.ValidRole(req.RoleFilter) {
		respondError(w, http.StatusBadRequest, "both class_filter and role_filter are required")
		return
	}
	err := s.auctions.ApplyFilters(r.Context(), id,
		models.ClassBand(req.ClassFilter), models.PlayerRole(req.RoleFilter))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRound2Open(w http.ResponseWriter, r *http.Request) {
	s.adminAction(func(r *http.Request, id int64) error {
		return s.auctions.OpenRound2Selection(r.Context(), id)
	})(w, r)
}

func (s *Server) handleRound2Close(w http.ResponseWriter, r *http.Request) {
	s.adminAction(func(r *http.Request, id int64) error {
		return s.auctions.CloseRound2Selection(r.Context(), id)
	})(w, r)
}

func (s *Server) handleRound2Start(w http.ResponseWriter, r *http.Request) {
	s.adminAction(func(r *http.Request, id int64) error {
		return s.auctions.StartRound2(r.Context(), id)
	})(w, r)
}

func (s *Server) handleAllSelections(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDPath(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid auction id")
		return
	}
	sels, err := s.round2.AllSelections(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sels)
}
