package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nbbluestudios/crickbid/internal/auction"
)

func TestRespondServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{auction.ErrNotFound, http.StatusNotFound},
		{auction.ErrNoLiveAuction, http.StatusNotFound},
		{auction.ErrLockContended, http.StatusConflict},
		{auction.ErrAlreadySelected, http.StatusConflict},
		{auction.ErrLiveAuctionExists, http.StatusConflict},
		{auction.ErrAuctionPaused, http.StatusUnprocessableEntity},
		{auction.ErrInsufficientBudget, http.StatusUnprocessableEntity},
		{auction.ErrBiddingFrozen, http.StatusUnprocessableEntity},
		{auction.ErrRosterFull, http.StatusUnprocessableEntity},
		{auction.ErrSelectionLimit, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("place bid: %w", auction.ErrAlreadyHighest), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			respondServiceError(w, tt.err)
			require.Equal(t, tt.want, w.Code)
			require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}
