package api

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleWebsocket upgrades the connection and attaches it to the
// auction's broadcast pool. Authentication uses the token query
// parameter because browsers cannot set headers on websocket upgrades.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	auctionID, ok := auctionIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "auction_id is required")
		return
	}
	if _, err := s.auctions.Snapshot(r.Context(), auctionID); err != nil {
		respondServiceError(w, err)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.gateway.HandleConnection(r.Context(), ws, auctionID, claims.ManagerID)
}
