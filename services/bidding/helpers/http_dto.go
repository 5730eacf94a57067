package helpers

import "github.com/shopspring/decimal"

// Request/Response DTOs. Money travels as decimal strings end to end; float
// never touches a price.
type CreateAuctionRequest struct {
	NFTRef          string           `json:"nft_ref" binding:"required"`
	SellerRef       string           `json:"seller_ref" binding:"required"`
	StartPrice      decimal.Decimal  `json:"start_price" binding:"required"`
	ReservePrice    *decimal.Decimal `json:"reserve_price,omitempty"`
	DurationSeconds int64            `json:"duration_seconds" binding:"required,gt=0"`
}

type PlaceBidRequest struct {
	AuctionID string          `json:"auction_id" binding:"required"`
	BidderRef string          `json:"bidder_ref" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	AuctionID string          `json:"auction_id"`
	BidderRef string          `json:"bidder_ref"`
	Amount    decimal.Decimal `json:"amount"`
	PlacedAt  string          `json:"placed_at"`
}
