package repository

import (
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

// AuctionStore is the persistence collaborator for auctions and bids. It owns
// the invariant "current price == highest accepted bid amount". Both write
// operations are conditional on the auction's version marker: they apply
// atomically or not at all, so a failed attempt never leaves a half-applied
// state.
type AuctionStore interface {
	// CreateAuction persists a new auction. The "no other active auction for
	// this asset" check happens inside the same critical section as the
	// insert and yields ErrAssetAlreadyAuctioned.
	CreateAuction(a model.Auction) error

	// GetAuction returns a consistent snapshot of the auction, including its
	// version marker.
	GetAuction(auctionID string) (model.Auction, error)

	// TryAcceptBid atomically inserts the bid row and bumps the auction's
	// current price, highest bidder, bid count and version — only if the
	// auction's version still equals expectedVersion. Returns the updated
	// auction, or ErrVersionConflict if another write won the race.
	TryAcceptBid(auctionID string, expectedVersion int64, bid model.Bid) (model.Auction, error)

	// TryCloseAuction atomically transitions the auction's status and sets
	// the winner, conditional on the version marker.
	TryCloseAuction(auctionID string, expectedVersion int64, status model.AuctionStatus, winnerRef string) (model.Auction, error)

	GetBidsByAuction(auctionID string) ([]model.Bid, error)
	GetHighestBid(auctionID string) (model.Bid, error)
	ListExpiredActive(now time.Time) ([]model.Auction, error)
	HasActiveAuctionForAsset(nftRef string) (bool, error)
	GetAuctionsByBidder(bidderRef string) ([]model.Auction, error)
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore.
// A single RWMutex serializes the conditional writes; the version check still
// runs so the store behaves exactly like the database-backed one.
type MemoryStore struct {
	mu         sync.RWMutex
	auctions   map[string]*model.Auction // key: auctionID
	bids       map[string][]model.Bid    // key: auctionID -> accepted bids in order
	bidderBids map[string][]string       // key: bidderRef -> auctionIDs bid on
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions:   make(map[string]*model.Auction),
		bids:       make(map[string][]model.Bid),
		bidderBids: make(map[string][]string),
	}
}

// CreateAuction persists the auction, rejecting a second active auction for
// the same asset.
func (s *MemoryStore) CreateAuction(a model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.auctions[a.AuctionID]; exists {
		return fmt.Errorf("create auction %s: %w - duplicate auction id", a.AuctionID, auctionerrors.ErrInvalidAuction)
	}
	for _, other := range s.auctions {
		if other.NFTRef == a.NFTRef && other.Status == model.AuctionStatusActive {
			return fmt.Errorf("create auction for asset %s: %w", a.NFTRef, auctionerrors.ErrAssetAlreadyAuctioned)
		}
	}

	stored := a
	s.auctions[a.AuctionID] = &stored
	return nil
}

// GetAuction returns a snapshot copy of the auction.
func (s *MemoryStore) GetAuction(auctionID string) (model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return *a, nil
}

// TryAcceptBid performs the conditional bid write.
func (s *MemoryStore) TryAcceptBid(auctionID string, expectedVersion int64, bid model.Bid) (model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("accept bid for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if a.Version != expectedVersion {
		return model.Auction{}, fmt.Errorf("accept bid for auction %s: %w", auctionID, auctionerrors.ErrVersionConflict)
	}

	s.bids[auctionID] = append(s.bids[auctionID], bid)
	a.CurrentPrice = bid.Amount
	a.HighestBidderRef = bid.BidderRef
	a.BidCount++
	a.Version++
	a.UpdatedAt = bid.PlacedAt

	s.recordBidderAuction(bid.BidderRef, auctionID)
	return *a, nil
}

// TryCloseAuction performs the conditional status transition.
func (s *MemoryStore) TryCloseAuction(auctionID string, expectedVersion int64, status model.AuctionStatus, winnerRef string) (model.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if a.Version != expectedVersion {
		return model.Auction{}, fmt.Errorf("close auction %s: %w", auctionID, auctionerrors.ErrVersionConflict)
	}

	a.Status = status
	a.WinnerRef = winnerRef
	a.Version++
	a.UpdatedAt = time.Now().UTC()
	return *a, nil
}

// GetBidsByAuction returns all accepted bids for an auction, oldest first.
func (s *MemoryStore) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	bids := s.bids[auctionID]
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return append([]model.Bid(nil), bids...), nil
}

// GetHighestBid returns the bid with the greatest accepted amount.
func (s *MemoryStore) GetHighestBid(auctionID string) (model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.auctions[auctionID]; !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	bids := s.bids[auctionID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(highest.Amount) {
			highest = b
		}
	}
	return highest, nil
}

// ListExpiredActive returns snapshots of all active auctions whose end time
// has passed.
func (s *MemoryStore) ListExpiredActive(now time.Time) ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []model.Auction
	for _, a := range s.auctions {
		if a.Status == model.AuctionStatusActive && !a.EndTime.After(now) {
			expired = append(expired, *a)
		}
	}
	return expired, nil
}

// HasActiveAuctionForAsset reports whether the asset is currently listed.
func (s *MemoryStore) HasActiveAuctionForAsset(nftRef string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.auctions {
		if a.NFTRef == nftRef && a.Status == model.AuctionStatusActive {
			return true, nil
		}
	}
	return false, nil
}

// GetAuctionsByBidder returns all auctions the bidder has placed bids on.
func (s *MemoryStore) GetAuctionsByBidder(bidderRef string) ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.bidderBids[bidderRef]
	if !ok || len(ids) == 0 {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", bidderRef, auctionerrors.ErrUserNoBids)
	}

	auctions := make([]model.Auction, 0, len(ids))
	for _, id := range ids {
		if a, exists := s.auctions[id]; exists {
			auctions = append(auctions, *a)
		}
	}
	return auctions, nil
}

// recordBidderAuction tracks which auctions a bidder participated in.
// Caller must hold the write lock.
func (s *MemoryStore) recordBidderAuction(bidderRef, auctionID string) {
	for _, id := range s.bidderBids[bidderRef] {
		if id == auctionID {
			return
		}
	}
	s.bidderBids[bidderRef] = append(s.bidderBids[bidderRef], auctionID)
}
