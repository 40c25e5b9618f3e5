package auction

import "errors"

var (
	// ErrNotFound means no auction matched the lookup.
	ErrNotFound = errors.New("auction not found")
	// ErrNoLiveAuction means no auction is currently accepting bids.
	ErrNoLiveAuction = errors.New("no live auction")
	// ErrLiveAuctionExists blocks creating a second concurrent auction.
	ErrLiveAuctionExists = errors.New("a live auction already exists")
	// ErrAuctionPaused rejects bids while the admin has paused play.
	ErrAuctionPaused = errors.New("auction is paused")
	// ErrNoPlayerOnBlock means no player is currently presented.
	ErrNoPlayerOnBlock = errors.New("no player on the block")
	// ErrNotBidding rejects bids outside the bidding phase.
	ErrNotBidding = errors.New("bidding is closed for this player")
	// ErrAlreadyHighest rejects a manager outbidding themselves.
	ErrAlreadyHighest = errors.New("you already hold the highest bid")
	// ErrRosterFull rejects bids from managers at the roster cap.
	ErrRosterFull = errors.New("roster is full")
	// ErrInsufficientBudget rejects bids the manager cannot cover.
	ErrInsufficientBudget = errors.New("insufficient budget for next bid")
	// ErrBiddingFrozen rejects bids that would strand the roster minimums.
	ErrBiddingFrozen = errors.New("bidding frozen: reserve budget for required roles")
	// ErrLockContended reports a serialization failure; the bid may be
	// retried against the refreshed state.
	ErrLockContended = errors.New("another bid is in flight, retry")
	// ErrSelectionClosed rejects round-two selections outside the window.
	ErrSelectionClosed = errors.New("round-two selection is not open")
	// ErrSelectionLimit rejects a sixth round-two selection.
	ErrSelectionLimit = errors.New("round-two selection limit reached")
	// ErrAlreadySelected reports another manager holds the selection.
	ErrAlreadySelected = errors.New("player already selected by another manager")
	// ErrNoSelections blocks starting round two with an empty pool.
	ErrNoSelections = errors.New("no round-two selections")
)
