package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-engine/internal/auctionerrors"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONReject(c, http.StatusBadRequest, ReasonInvalidRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// Stable machine-readable reason codes carried in rejection responses.
const (
	ReasonInvalidRequest     = "INVALID_REQUEST"
	ReasonAuctionNotFound    = "AUCTION_NOT_FOUND"
	ReasonInvalidBid         = "INVALID_BID"
	ReasonInvalidAuction     = "INVALID_AUCTION"
	ReasonAuctionNotActive   = "AUCTION_NOT_ACTIVE"
	ReasonAuctionExpired     = "AUCTION_EXPIRED"
	ReasonSelfBid            = "SELF_BID_FORBIDDEN"
	ReasonBidTooLow          = "BID_TOO_LOW"
	ReasonAlreadyHighest     = "ALREADY_HIGHEST_BIDDER"
	ReasonConcurrentConflict = "CONCURRENT_BID_CONFLICT"
	ReasonAssetAlreadyListed = "ASSET_ALREADY_AUCTIONED"
	ReasonNotOwner           = "NOT_OWNER"
	ReasonCannotCancel       = "CANNOT_CANCEL_WITH_BIDS"
	ReasonStorageUnavailable = "STORAGE_UNAVAILABLE"
	ReasonInternal           = "INTERNAL_ERROR"
)

// MapErrorToHTTP maps domain/service errors to HTTP status, reason code and
// message. Every named reject has a stable mapping so clients can branch on
// the reason without parsing messages.
func MapErrorToHTTP(err error) (int, string, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, ReasonAuctionNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, ReasonInvalidBid, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidAuction):
		return http.StatusBadRequest, ReasonInvalidAuction, "invalid auction details"
	case errors.Is(err, auctionerrors.ErrAuctionExpired):
		return http.StatusConflict, ReasonAuctionExpired, "auction has expired"
	case errors.Is(err, auctionerrors.ErrAuctionNotActive):
		return http.StatusConflict, ReasonAuctionNotActive, "auction is not active"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, ReasonBidTooLow, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAlreadyHighestBidder):
		return http.StatusConflict, ReasonAlreadyHighest, "already the highest bidder"
	case errors.Is(err, auctionerrors.ErrSelfBidForbidden):
		return http.StatusForbidden, ReasonSelfBid, "sellers cannot bid on their own auctions"
	case errors.Is(err, auctionerrors.ErrConcurrentBidConflict):
		return http.StatusConflict, ReasonConcurrentConflict, "bid lost a concurrent update race, retry"
	case errors.Is(err, auctionerrors.ErrAssetAlreadyAuctioned):
		return http.StatusConflict, ReasonAssetAlreadyListed, "asset is already under an active auction"
	case errors.Is(err, auctionerrors.ErrNotOwner):
		return http.StatusForbidden, ReasonNotOwner, "caller does not own this asset or auction"
	case errors.Is(err, auctionerrors.ErrCannotCancelWithBids):
		return http.StatusConflict, ReasonCannotCancel, "auction already has bids"
	case errors.Is(err, auctionerrors.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, ReasonStorageUnavailable, "storage temporarily unavailable"
	default:
		return http.StatusInternalServerError, ReasonInternal, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
