package bidding

import (
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func activeSnapshot(now time.Time) model.Auction {
	return model.Auction{
		AuctionID:        "a1",
		NFTRef:           "nft1",
		SellerRef:        "seller1",
		StartPrice:       decimal.NewFromInt(100),
		CurrentPrice:     decimal.NewFromInt(100),
		HighestBidderRef: "",
		Status:           model.AuctionStatusActive,
		StartTime:        now.Add(-time.Hour),
		EndTime:          now.Add(time.Hour),
	}
}

// The rules fire in a fixed order; each case trips exactly one of them.
func TestValidateBidAgainstSnapshot(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name        string
		mutate      func(a *model.Auction)
		bidderRef   string
		amount      decimal.Decimal
		at          time.Time
		expectedErr error
	}{
		{
			name:      "first_bid_above_start_price",
			bidderRef: "user1",
			amount:    decimal.NewFromInt(101),
			at:        now,
		},
		{
			name:        "ended_auction",
			mutate:      func(a *model.Auction) { a.Status = model.AuctionStatusEnded },
			bidderRef:   "user1",
			amount:      decimal.NewFromInt(150),
			at:          now,
			expectedErr: auctionerrors.ErrAuctionNotActive,
		},
		{
			name:        "cancelled_auction",
			mutate:      func(a *model.Auction) { a.Status = model.AuctionStatusCancelled },
			bidderRef:   "user1",
			amount:      decimal.NewFromInt(150),
			at:          now,
			expectedErr: auctionerrors.ErrAuctionNotActive,
		},
		{
			name:        "past_end_time_still_active",
			bidderRef:   "user1",
			amount:      decimal.NewFromInt(150),
			at:          now.Add(2 * time.Hour),
			expectedErr: auctionerrors.ErrAuctionExpired,
		},
		{
			name:      "bid_exactly_at_end_time",
			bidderRef: "user1",
			amount:    decimal.NewFromInt(150),
			at:        now.Add(time.Hour),
		},
		{
			name:        "seller_bids_on_own_auction",
			bidderRef:   "seller1",
			amount:      decimal.NewFromInt(150),
			at:          now,
			expectedErr: auctionerrors.ErrSelfBidForbidden,
		},
		{
			name:        "bid_below_current_price",
			bidderRef:   "user1",
			amount:      decimal.NewFromInt(99),
			at:          now,
			expectedErr: auctionerrors.ErrBidTooLow,
		},
		{
			name:        "bid_equal_to_current_price",
			bidderRef:   "user1",
			amount:      decimal.NewFromInt(100),
			at:          now,
			expectedErr: auctionerrors.ErrBidTooLow,
		},
		{
			name: "first_bid_equal_to_start_price_rejected",
			mutate: func(a *model.Auction) {
				a.CurrentPrice = a.StartPrice
			},
			bidderRef:   "user1",
			amount:      decimal.NewFromInt(100),
			at:          now,
			expectedErr: auctionerrors.ErrBidTooLow,
		},
		{
			name: "highest_bidder_raises_own_bid",
			mutate: func(a *model.Auction) {
				a.CurrentPrice = decimal.NewFromInt(120)
				a.HighestBidderRef = "user1"
			},
			bidderRef:   "user1",
			amount:      decimal.NewFromInt(130),
			at:          now,
			expectedErr: auctionerrors.ErrAlreadyHighestBidder,
		},
		{
			name: "expired_beats_self_bid_in_rule_order",
			mutate: func(a *model.Auction) {
				a.EndTime = now.Add(-time.Minute)
			},
			bidderRef:   "seller1",
			amount:      decimal.NewFromInt(150),
			at:          now,
			expectedErr: auctionerrors.ErrAuctionExpired,
		},
		{
			name: "too_low_beats_already_highest_in_rule_order",
			mutate: func(a *model.Auction) {
				a.CurrentPrice = decimal.NewFromInt(120)
				a.HighestBidderRef = "user1"
			},
			bidderRef:   "user1",
			amount:      decimal.NewFromInt(110),
			at:          now,
			expectedErr: auctionerrors.ErrBidTooLow,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			snap := activeSnapshot(now)
			if tc.mutate != nil {
				tc.mutate(&snap)
			}

			err := validateBidAgainstSnapshot(snap, tc.bidderRef, tc.amount, tc.at)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateBidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		auctionID string
		bidderRef string
		amount    decimal.Decimal
		wantError bool
	}{
		{name: "valid", auctionID: "a1", bidderRef: "user1", amount: decimal.NewFromInt(1)},
		{name: "empty_auction_id", auctionID: "", bidderRef: "user1", amount: decimal.NewFromInt(1), wantError: true},
		{name: "empty_bidder_ref", auctionID: "a1", bidderRef: "", amount: decimal.NewFromInt(1), wantError: true},
		{name: "zero_amount", auctionID: "a1", bidderRef: "user1", amount: decimal.Zero, wantError: true},
		{name: "negative_amount", auctionID: "a1", bidderRef: "user1", amount: decimal.NewFromInt(-5), wantError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validateBidInput(tc.auctionID, tc.bidderRef, tc.amount)
			if tc.wantError {
				require.ErrorIs(t, err, auctionerrors.ErrInvalidBid)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
