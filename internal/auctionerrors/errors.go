package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound    = errors.New("auction not found")
	ErrNoBids             = errors.New("no bids found for auction")
	ErrUserNoBids         = errors.New("user has not placed any bids")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrVersionConflict signals that the auction row changed between the
	// snapshot read and the conditional write. It never crosses the engine
	// boundary: the coordinator retries and eventually surfaces
	// ErrConcurrentBidConflict instead.
	ErrVersionConflict = errors.New("auction version conflict")
)

// Validation rejects: deterministic, safe to show to an end user, never
// retried automatically.
var (
	ErrInvalidBid           = errors.New("invalid bid")
	ErrAuctionNotActive     = errors.New("auction is not active")
	ErrAuctionExpired       = errors.New("auction has expired")
	ErrSelfBidForbidden     = errors.New("seller cannot bid on own auction")
	ErrBidTooLow            = errors.New("bid amount too low")
	ErrAlreadyHighestBidder = errors.New("bidder already holds the highest bid")
)

// Lifecycle rejects
var (
	ErrAssetAlreadyAuctioned = errors.New("asset already has an active auction")
	ErrNotOwner              = errors.New("actor does not own the asset")
	ErrCannotCancelWithBids  = errors.New("cannot cancel an auction with bids")
	ErrInvalidAuction        = errors.New("invalid auction parameters")
)

// Concurrency reject: returned only after the coordinator's bounded retry is
// exhausted. The caller may retry with a fresh price quote.
var ErrConcurrentBidConflict = errors.New("concurrent bid conflict")
