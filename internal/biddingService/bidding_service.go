package bidding

import (
	"errors"
	"fmt"

	"auction-engine/internal/assets"
	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/clock"
	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// maxBidAttempts bounds the coordinator's retry loop. A conflicting write
// triggers a fresh read and one more validation pass; exhausting the budget
// surfaces ErrConcurrentBidConflict.
const maxBidAttempts = 3

// Notifier is the slice of the dispatcher the engine needs: a non-blocking,
// best-effort hand-off.
type Notifier interface {
	Dispatch(n notifier.Notification)
}

// BiddingService coordinates bid placement and the auction lifecycle against
// the store. All public operations return named reject errors, never panics.
type BiddingService struct {
	store    repository.AuctionStore
	registry assets.Registry
	notify   Notifier
	clock    clock.Clock
}

// NewBiddingService creates a new BiddingService instance. A nil notifier
// disables notifications; a nil clk falls back to the system clock.
func NewBiddingService(store repository.AuctionStore, registry assets.Registry, notify Notifier, clk clock.Clock) *BiddingService {
	if notify == nil {
		notify = noopNotifier{}
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &BiddingService{
		store:    store,
		registry: registry,
		notify:   notify,
		clock:    clk,
	}
}

// PlaceBid validates and records a bid through the store's conditional write.
// The read-validate-write cycle runs at most maxBidAttempts times: a version
// conflict means another bid (or a close) landed first, so the snapshot is
// re-read and the rules re-applied against the fresh state.
func (s *BiddingService) PlaceBid(auctionID, bidderRef string, amount decimal.Decimal) (model.Bid, error) {
	if err := validateBidInput(auctionID, bidderRef, amount); err != nil {
		return model.Bid{}, err
	}

	for attempt := 1; attempt <= maxBidAttempts; attempt++ {
		snap, err := s.store.GetAuction(auctionID)
		if err != nil {
			return model.Bid{}, fmt.Errorf("service: failed to read auction %s: %w", auctionID, err)
		}

		if err := validateBidAgainstSnapshot(snap, bidderRef, amount, s.clock.Now()); err != nil {
			return model.Bid{}, fmt.Errorf("service: %w", err)
		}

		bid := model.Bid{
			BidID:     utils.GenerateID(),
			AuctionID: auctionID,
			BidderRef: bidderRef,
			Amount:    amount,
			PlacedAt:  s.clock.Now(),
		}

		_, err = s.store.TryAcceptBid(auctionID, snap.Version, bid)
		if err == nil {
			s.notifyBidAccepted(snap, bid)
			return bid, nil
		}
		if !errors.Is(err, auctionerrors.ErrVersionConflict) {
			return model.Bid{}, fmt.Errorf("service: failed to accept bid on auction %s: %w", auctionID, err)
		}

		utils.Debug("bid write conflicted, retrying", map[string]any{
			"auction_id": auctionID,
			"bidder_ref": bidderRef,
			"attempt":    attempt,
		})
	}

	return model.Bid{}, fmt.Errorf("service: bid on auction %s lost %d races: %w", auctionID, maxBidAttempts, auctionerrors.ErrConcurrentBidConflict)
}

// notifyBidAccepted enqueues the post-acceptance side effects: "new bid" to
// the seller and "outbid" to the previous highest bidder. Hand-off only —
// failures here can never fail the placement.
func (s *BiddingService) notifyBidAccepted(prev model.Auction, bid model.Bid) {
	s.notify.Dispatch(notifier.Notification{
		RecipientRef: prev.SellerRef,
		Kind:         notifier.KindNewBid,
		Payload: map[string]any{
			"auction_id": bid.AuctionID,
			"bidder_ref": bid.BidderRef,
			"amount":     bid.Amount.String(),
		},
	})

	if prev.HighestBidderRef != "" && prev.HighestBidderRef != bid.BidderRef {
		s.notify.Dispatch(notifier.Notification{
			RecipientRef: prev.HighestBidderRef,
			Kind:         notifier.KindOutbid,
			Payload: map[string]any{
				"auction_id": bid.AuctionID,
				"new_amount": bid.Amount.String(),
			},
		})
	}
}

// GetAuction returns the auction's current snapshot.
func (s *BiddingService) GetAuction(auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	a, err := s.store.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// GetBidsForAuction returns all accepted bids for an auction.
func (s *BiddingService) GetBidsForAuction(auctionID string) ([]model.Bid, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	bids, err := s.store.GetBidsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	return bids, nil
}

// GetHighestBid returns the current highest bid for an auction.
func (s *BiddingService) GetHighestBid(auctionID string) (model.Bid, error) {
	if auctionID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}
	bid, err := s.store.GetHighestBid(auctionID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: failed to get highest bid for auction %s: %w", auctionID, err)
	}
	return bid, nil
}

// GetAuctionsByBidder returns all auctions a user has placed bids on.
func (s *BiddingService) GetAuctionsByBidder(bidderRef string) ([]model.Auction, error) {
	if bidderRef == "" {
		return nil, fmt.Errorf("service: %w - empty bidder ref", auctionerrors.ErrInvalidBid)
	}
	auctions, err := s.store.GetAuctionsByBidder(bidderRef)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get auctions for bidder %s: %w", bidderRef, err)
	}
	return auctions, nil
}

type noopNotifier struct{}

func (noopNotifier) Dispatch(notifier.Notification) {}
