package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/nbbluestudios/crickbid/internal/auction"
	"github.com/nbbluestudios/crickbid/internal/managers"
	"github.com/nbbluestudios/crickbid/internal/players"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondServiceError maps domain errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auction.ErrNotFound),
		errors.Is(err, auction.ErrNoLiveAuction),
		errors.Is(err, managers.ErrNotFound),
		errors.Is(err, players.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auction.ErrLockContended):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auction.ErrAlreadySelected):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auction.ErrLiveAuctionExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auction.ErrAuctionPaused),
		errors.Is(err, auction.ErrNotBidding),
		errors.Is(err, auction.ErrNoPlayerOnBlock),
		errors.Is(err, auction.ErrAlreadyHighest),
		errors.Is(err, auction.ErrRosterFull),
		errors.Is(err, auction.ErrInsufficientBudget),
		errors.Is(err, auction.ErrBiddingFrozen),
		errors.Is(err, auction.ErrSelectionClosed),
		errors.Is(err, auction.ErrSelectionLimit),
		errors.Is(err, auction.ErrNoSelections):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("internal error")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
