package bidding

import (
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// maxCloseAttempts bounds the conditional close retry. Conflicts here are
// almost always a last-second bid; re-reading picks up the new price before
// the winner is decided.
const maxCloseAttempts = 3

// CreateAuction lists an asset for sale. The caller must own the asset, and
// an asset can be under at most one active auction at a time; the store
// enforces the latter atomically.
func (s *BiddingService) CreateAuction(nftRef, sellerRef string, startPrice decimal.Decimal, reservePrice *decimal.Decimal, duration time.Duration) (model.Auction, error) {
	if nftRef == "" || sellerRef == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing nftRef or sellerRef", auctionerrors.ErrInvalidAuction)
	}
	if !startPrice.IsPositive() {
		return model.Auction{}, fmt.Errorf("service: %w - start price must be positive", auctionerrors.ErrInvalidAuction)
	}
	if reservePrice != nil && reservePrice.LessThan(startPrice) {
		return model.Auction{}, fmt.Errorf("service: %w - reserve price below start price", auctionerrors.ErrInvalidAuction)
	}
	if duration <= 0 {
		return model.Auction{}, fmt.Errorf("service: %w - non-positive duration", auctionerrors.ErrInvalidAuction)
	}

	owner, err := s.registry.IsOwner(nftRef, sellerRef)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to check ownership of %s: %w", nftRef, err)
	}
	if !owner {
		return model.Auction{}, fmt.Errorf("service: %s does not own %s: %w", sellerRef, nftRef, auctionerrors.ErrNotOwner)
	}

	now := s.clock.Now()
	a := model.Auction{
		AuctionID:    utils.GenerateID(),
		NFTRef:       nftRef,
		SellerRef:    sellerRef,
		StartPrice:   startPrice,
		ReservePrice: reservePrice,
		CurrentPrice: startPrice,
		Status:       model.AuctionStatusActive,
		StartTime:    now,
		EndTime:      now.Add(duration),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateAuction(a); err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to create auction: %w", err)
	}

	utils.Info("auction created", map[string]any{
		"auction_id": a.AuctionID,
		"nft_ref":    a.NFTRef,
		"seller_ref": a.SellerRef,
		"end_time":   a.EndTime,
	})
	return a, nil
}

// CloseExpiredAuctions transitions every active auction past its end time to
// ENDED and returns how many were closed. The sweep is idempotent: auctions
// already moved by a concurrent sweep or a cancel are skipped, and a failure
// on one auction never blocks the rest.
func (s *BiddingService) CloseExpiredAuctions(now time.Time) (int, error) {
	expired, err := s.store.ListExpiredActive(now)
	if err != nil {
		return 0, fmt.Errorf("service: failed to list expired auctions: %w", err)
	}

	closed := 0
	for _, a := range expired {
		ok, err := s.closeExpired(a.AuctionID, now)
		if err != nil {
			utils.Error("failed to close expired auction", map[string]any{
				"auction_id": a.AuctionID,
				"error":      err.Error(),
			})
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

// closeExpired performs the conditional ENDED transition for one auction.
// Returns false without error when another writer already moved the auction
// out of ACTIVE.
func (s *BiddingService) closeExpired(auctionID string, now time.Time) (bool, error) {
	for attempt := 1; attempt <= maxCloseAttempts; attempt++ {
		snap, err := s.store.GetAuction(auctionID)
		if err != nil {
			if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
				return false, nil
			}
			return false, err
		}
		if snap.Status != model.AuctionStatusActive || snap.EndTime.After(now) {
			return false, nil
		}

		// The reserve gate: bids below an unmet reserve were accepted, but
		// the auction still ends without a winner.
		winner := ""
		if snap.BidCount > 0 && snap.ReserveMet() {
			winner = snap.HighestBidderRef
		}

		ended, err := s.store.TryCloseAuction(auctionID, snap.Version, model.AuctionStatusEnded, winner)
		if err == nil {
			s.notifyClosed(ended)
			return true, nil
		}
		if !errors.Is(err, auctionerrors.ErrVersionConflict) {
			return false, err
		}
	}
	return false, fmt.Errorf("close auction %s: %w", auctionID, auctionerrors.ErrConcurrentBidConflict)
}

// notifyClosed emits end-of-auction notifications after a successful ENDED
// transition: the seller always hears the outcome, the winner only exists
// when a bid beat the reserve.
func (s *BiddingService) notifyClosed(a model.Auction) {
	if a.WinnerRef != "" {
		s.notify.Dispatch(notifier.Notification{
			RecipientRef: a.WinnerRef,
			Kind:         notifier.KindAuctionWon,
			Payload: map[string]any{
				"auction_id":  a.AuctionID,
				"nft_ref":     a.NFTRef,
				"final_price": a.CurrentPrice.String(),
			},
		})
	}
	s.notify.Dispatch(notifier.Notification{
		RecipientRef: a.SellerRef,
		Kind:         notifier.KindAuctionEnded,
		Payload: map[string]any{
			"auction_id":  a.AuctionID,
			"nft_ref":     a.NFTRef,
			"sold":        a.WinnerRef != "",
			"final_price": a.CurrentPrice.String(),
		},
	})
}

// CancelAuction withdraws an active, bid-free auction. Only the seller may
// cancel. A conflicting write during the transition is re-read; if a bid
// landed in the meantime the cancel is rejected on the fresh snapshot.
func (s *BiddingService) CancelAuction(auctionID, actorRef string) error {
	if auctionID == "" || actorRef == "" {
		return fmt.Errorf("service: %w - missing auctionID or actorRef", auctionerrors.ErrInvalidAuction)
	}

	for attempt := 1; attempt <= maxCloseAttempts; attempt++ {
		snap, err := s.store.GetAuction(auctionID)
		if err != nil {
			return fmt.Errorf("service: failed to read auction %s: %w", auctionID, err)
		}
		if actorRef != snap.SellerRef {
			return fmt.Errorf("service: %s is not the seller of auction %s: %w", actorRef, auctionID, auctionerrors.ErrNotOwner)
		}
		if snap.Status != model.AuctionStatusActive {
			return fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrAuctionNotActive)
		}
		if snap.BidCount > 0 {
			return fmt.Errorf("service: auction %s has %d bids: %w", auctionID, snap.BidCount, auctionerrors.ErrCannotCancelWithBids)
		}

		_, err = s.store.TryCloseAuction(auctionID, snap.Version, model.AuctionStatusCancelled, "")
		if err == nil {
			utils.Info("auction cancelled", map[string]any{
				"auction_id": auctionID,
				"seller_ref": actorRef,
			})
			return nil
		}
		if !errors.Is(err, auctionerrors.ErrVersionConflict) {
			return fmt.Errorf("service: failed to cancel auction %s: %w", auctionID, err)
		}
	}

	return fmt.Errorf("service: cancel auction %s lost %d races: %w", auctionID, maxCloseAttempts, auctionerrors.ErrConcurrentBidConflict)
}
