package bidding

import (
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
)

// validateBidInput checks request shape before any store access.
func validateBidInput(auctionID, bidderRef string, amount decimal.Decimal) error {
	if auctionID == "" || bidderRef == "" {
		return fmt.Errorf("service: %w - missing auctionID or bidderRef", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	return nil
}

// validateBidAgainstSnapshot decides whether a proposed bid may be accepted
// against an auction snapshot. Pure and deterministic: no side effects, no
// store access, rules applied in order.
func validateBidAgainstSnapshot(snap model.Auction, bidderRef string, amount decimal.Decimal, now time.Time) error {
	if snap.Status != model.AuctionStatusActive {
		return fmt.Errorf("auction %s: %w", snap.AuctionID, auctionerrors.ErrAuctionNotActive)
	}
	// Lifecycle transitions normally flip expired auctions to ENDED, but the
	// sweep may lag behind the wall clock, so the end time is checked here too.
	if now.After(snap.EndTime) {
		return fmt.Errorf("auction %s: %w", snap.AuctionID, auctionerrors.ErrAuctionExpired)
	}
	if bidderRef == snap.SellerRef {
		return fmt.Errorf("auction %s: %w", snap.AuctionID, auctionerrors.ErrSelfBidForbidden)
	}
	if !amount.GreaterThan(snap.CurrentPrice) {
		return fmt.Errorf("auction %s: %w - current price is %s", snap.AuctionID, auctionerrors.ErrBidTooLow, snap.CurrentPrice.String())
	}
	if snap.HighestBidderRef != "" && bidderRef == snap.HighestBidderRef {
		return fmt.Errorf("auction %s: %w", snap.AuctionID, auctionerrors.ErrAlreadyHighestBidder)
	}
	return nil
}
