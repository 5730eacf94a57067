package repository

import (
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore is a database-backed AuctionStore. The conditional writes are a
// single transaction containing an UPDATE guarded by "version = ?" — zero
// rows affected means another writer won the race.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection and runs migrations for the
// auction tables.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&model.Auction{}, &model.Bid{}); err != nil {
		return nil, fmt.Errorf("migrate auction tables: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Open connects to the database behind the given dialector and returns a
// migrated store.
func Open(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auctionerrors.ErrStorageUnavailable, err)
	}
	return NewGormStore(db)
}

// CreateAuction inserts the auction inside a transaction that also checks the
// asset is not already under an active auction.
func (s *GormStore) CreateAuction(a model.Auction) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Auction{}).
			Where("nft_ref = ? AND status = ?", a.NFTRef, model.AuctionStatusActive).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("create auction for asset %s: %w", a.NFTRef, auctionerrors.ErrAssetAlreadyAuctioned)
		}
		return tx.Create(&a).Error
	})
	if err != nil {
		return s.wrapStorageErr("create auction", err)
	}
	return nil
}

// GetAuction returns the auction row as a snapshot.
func (s *GormStore) GetAuction(auctionID string) (model.Auction, error) {
	var a model.Auction
	err := s.db.First(&a, "auction_id = ?", auctionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, s.wrapStorageErr("get auction", err)
	}
	return a, nil
}

// TryAcceptBid performs the conditional bid write in one transaction.
func (s *GormStore) TryAcceptBid(auctionID string, expectedVersion int64, bid model.Bid) (model.Auction, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Auction{}).
			Where("auction_id = ? AND version = ?", auctionID, expectedVersion).
			Updates(map[string]any{
				"current_price":      bid.Amount,
				"highest_bidder_ref": bid.BidderRef,
				"bid_count":          gorm.Expr("bid_count + 1"),
				"version":            gorm.Expr("version + 1"),
				"updated_at":         bid.PlacedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.conflictOrNotFound(tx, auctionID, "accept bid")
		}
		return tx.Create(&bid).Error
	})
	if err != nil {
		return model.Auction{}, s.wrapStorageErr("accept bid", err)
	}
	return s.GetAuction(auctionID)
}

// TryCloseAuction performs the conditional status transition.
func (s *GormStore) TryCloseAuction(auctionID string, expectedVersion int64, status model.AuctionStatus, winnerRef string) (model.Auction, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Auction{}).
			Where("auction_id = ? AND version = ?", auctionID, expectedVersion).
			Updates(map[string]any{
				"status":     status,
				"winner_ref": winnerRef,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.conflictOrNotFound(tx, auctionID, "close auction")
		}
		return nil
	})
	if err != nil {
		return model.Auction{}, s.wrapStorageErr("close auction", err)
	}
	return s.GetAuction(auctionID)
}

// GetBidsByAuction returns all accepted bids for an auction, oldest first.
func (s *GormStore) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return nil, err
	}
	var bids []model.Bid
	err := s.db.Where("auction_id = ?", auctionID).Order("placed_at asc").Find(&bids).Error
	if err != nil {
		return nil, s.wrapStorageErr("get bids", err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return bids, nil
}

// GetHighestBid returns the bid with the greatest accepted amount.
func (s *GormStore) GetHighestBid(auctionID string) (model.Bid, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return model.Bid{}, err
	}
	var bids []model.Bid
	err := s.db.Where("auction_id = ?", auctionID).Find(&bids).Error
	if err != nil {
		return model.Bid{}, s.wrapStorageErr("get highest bid", err)
	}
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	// Decimal columns are stored as text, so the comparison happens here
	// rather than in an ORDER BY.
	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(highest.Amount) {
			highest = b
		}
	}
	return highest, nil
}

// ListExpiredActive returns all active auctions whose end time has passed.
func (s *GormStore) ListExpiredActive(now time.Time) ([]model.Auction, error) {
	var auctions []model.Auction
	err := s.db.
		Where("status = ? AND end_time <= ?", model.AuctionStatusActive, now).
		Find(&auctions).Error
	if err != nil {
		return nil, s.wrapStorageErr("list expired auctions", err)
	}
	return auctions, nil
}

// HasActiveAuctionForAsset reports whether the asset is currently listed.
func (s *GormStore) HasActiveAuctionForAsset(nftRef string) (bool, error) {
	var count int64
	err := s.db.Model(&model.Auction{}).
		Where("nft_ref = ? AND status = ?", nftRef, model.AuctionStatusActive).
		Count(&count).Error
	if err != nil {
		return false, s.wrapStorageErr("check active auction", err)
	}
	return count > 0, nil
}

// GetAuctionsByBidder returns all auctions the bidder has placed bids on.
func (s *GormStore) GetAuctionsByBidder(bidderRef string) ([]model.Auction, error) {
	var auctions []model.Auction
	err := s.db.
		Where("auction_id IN (?)",
			s.db.Model(&model.Bid{}).Select("auction_id").Where("bidder_ref = ?", bidderRef)).
		Find(&auctions).Error
	if err != nil {
		return nil, s.wrapStorageErr("get auctions by bidder", err)
	}
	if len(auctions) == 0 {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", bidderRef, auctionerrors.ErrUserNoBids)
	}
	return auctions, nil
}

// conflictOrNotFound disambiguates a zero-row conditional update: the auction
// either does not exist or its version moved.
func (s *GormStore) conflictOrNotFound(tx *gorm.DB, auctionID, op string) error {
	var count int64
	if err := tx.Model(&model.Auction{}).Where("auction_id = ?", auctionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s for auction %s: %w", op, auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return fmt.Errorf("%s for auction %s: %w", op, auctionID, auctionerrors.ErrVersionConflict)
}

// wrapStorageErr tags infrastructure failures as retryable storage errors,
// leaving domain sentinels untouched.
func (s *GormStore) wrapStorageErr(op string, err error) error {
	switch {
	case errors.Is(err, auctionerrors.ErrVersionConflict),
		errors.Is(err, auctionerrors.ErrAuctionNotFound),
		errors.Is(err, auctionerrors.ErrAssetAlreadyAuctioned),
		errors.Is(err, auctionerrors.ErrNoBids),
		errors.Is(err, auctionerrors.ErrUserNoBids):
		return err
	default:
		return fmt.Errorf("%s: %w: %v", op, auctionerrors.ErrStorageUnavailable, err)
	}
}
