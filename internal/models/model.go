package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionStatusActive    AuctionStatus = "ACTIVE"
	AuctionStatusEnded     AuctionStatus = "ENDED"
	AuctionStatusCancelled AuctionStatus = "CANCELLED"
)

// Auction is a time-bounded sale of one asset. CurrentPrice always equals the
// amount of the highest accepted bid, or StartPrice if no bids exist. Version
// is bumped by every accepted bid and every status transition; it is the
// marker the store's conditional writes compare against.
type Auction struct {
	AuctionID        string           `json:"auction_id" gorm:"primaryKey;column:auction_id"`
	NFTRef           string           `json:"nft_ref" gorm:"column:nft_ref;index"`
	SellerRef        string           `json:"seller_ref" gorm:"column:seller_ref"`
	StartPrice       decimal.Decimal  `json:"start_price" gorm:"column:start_price;type:decimal(32,18)"`
	ReservePrice     *decimal.Decimal `json:"reserve_price,omitempty" gorm:"column:reserve_price;type:decimal(32,18)"`
	CurrentPrice     decimal.Decimal  `json:"current_price" gorm:"column:current_price;type:decimal(32,18)"`
	HighestBidderRef string           `json:"highest_bidder_ref,omitempty" gorm:"column:highest_bidder_ref"`
	WinnerRef        string           `json:"winner_ref,omitempty" gorm:"column:winner_ref"`
	BidCount         int              `json:"bid_count" gorm:"column:bid_count"`
	Status           AuctionStatus    `json:"status" gorm:"column:status;index"`
	StartTime        time.Time        `json:"start_time" gorm:"column:start_time"`
	EndTime          time.Time        `json:"end_time" gorm:"column:end_time;index"`
	Version          int64            `json:"-" gorm:"column:version"`
	CreatedAt        time.Time        `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"column:updated_at"`
}

// HasReserve reports whether a reserve price is set.
func (a Auction) HasReserve() bool {
	return a.ReservePrice != nil
}

// ReserveMet reports whether the current price satisfies the reserve. An
// auction without a reserve always meets it.
func (a Auction) ReserveMet() bool {
	return a.ReservePrice == nil || a.CurrentPrice.GreaterThanOrEqual(*a.ReservePrice)
}

// Bid is an immutable, timestamped proposal to pay Amount for the auctioned
// asset. Bids are never edited after acceptance, only superseded by a later,
// higher bid.
type Bid struct {
	BidID     string          `json:"bid_id" gorm:"primaryKey;column:bid_id"`
	AuctionID string          `json:"auction_id" gorm:"column:auction_id;index"`
	BidderRef string          `json:"bidder_ref" gorm:"column:bidder_ref;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(32,18)"`
	PlacedAt  time.Time       `json:"placed_at" gorm:"column:placed_at"`
}
