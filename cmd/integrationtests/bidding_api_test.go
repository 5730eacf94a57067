package integrationtests

import (
	"net/http"
	"testing"
	"time"

	"auction-engine/services/bidding/helpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// A full auction round trip: list, bid war, winning bid, bid rejections.
func TestAuctionBiddingScenario(t *testing.T) {
	env := SetupTestEnv(map[string]string{"nft1": "seller1"})

	// Seller lists the asset
	resp, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
		NFTRef:          "nft1",
		SellerRef:       "seller1",
		StartPrice:      decimal.NewFromInt(100),
		DurationSeconds: 3600,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	auctionID := data(t, resp)["auction_id"].(string)
	require.NotEmpty(t, auctionID)

	// First bid above the start price is accepted
	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/bids", helpers.PlaceBidRequest{
		AuctionID: auctionID, BidderRef: "user1", Amount: decimal.NewFromInt(150),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// A higher bid displaces it
	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/bids", helpers.PlaceBidRequest{
		AuctionID: auctionID, BidderRef: "user2", Amount: decimal.NewFromInt(200),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Bidding below the current price is rejected
	resp, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/bids", helpers.PlaceBidRequest{
		AuctionID: auctionID, BidderRef: "user3", Amount: decimal.NewFromInt(180),
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, helpers.ReasonBidTooLow, resp["reason"])

	// The current leader cannot raise their own bid
	resp, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/bids", helpers.PlaceBidRequest{
		AuctionID: auctionID, BidderRef: "user2", Amount: decimal.NewFromInt(250),
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, helpers.ReasonAlreadyHighest, resp["reason"])

	// The seller cannot bid at all
	resp, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/bids", helpers.PlaceBidRequest{
		AuctionID: auctionID, BidderRef: "seller1", Amount: decimal.NewFromInt(300),
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, helpers.ReasonSelfBid, resp["reason"])

	// Auction snapshot reflects the bid war
	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := data(t, resp)
	require.Equal(t, "200", snap["current_price"])
	require.Equal(t, "user2", snap["highest_bidder_ref"])
	require.Equal(t, float64(2), snap["bid_count"])

	// Winning bid and bid history
	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID+"/winning", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user2", data(t, resp)["bidder_ref"])

	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID+"/bids", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 2)

	// Bidder participation listing
	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/users/user1/auctions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 1)

	// With bids in place the seller can no longer cancel
	resp, w = env.ExecuteRequestAndParse(t, http.MethodDelete, "/auctions/"+auctionID+"?actor_ref=seller1", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, helpers.ReasonCannotCancel, resp["reason"])
}

func TestCreateAuctionRejections(t *testing.T) {
	env := SetupTestEnv(map[string]string{"nft1": "seller1"})

	tests := []struct {
		name       string
		request    any
		wantStatus int
		wantReason string
	}{
		{
			name: "not_the_owner",
			request: helpers.CreateAuctionRequest{
				NFTRef: "nft1", SellerRef: "impostor",
				StartPrice: decimal.NewFromInt(100), DurationSeconds: 3600,
			},
			wantStatus: http.StatusForbidden,
			wantReason: helpers.ReasonNotOwner,
		},
		{
			name:       "invalid_json",
			request:    `{nft_ref: missing quotes}`,
			wantStatus: http.StatusBadRequest,
			wantReason: helpers.ReasonInvalidRequest,
		},
		{
			name: "missing_duration",
			request: helpers.CreateAuctionRequest{
				NFTRef: "nft1", SellerRef: "seller1",
				StartPrice: decimal.NewFromInt(100),
			},
			wantStatus: http.StatusBadRequest,
			wantReason: helpers.ReasonInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", tt.request)
			require.Equal(t, tt.wantStatus, w.Code)
			require.Equal(t, tt.wantReason, resp["reason"])
		})
	}

	t.Run("second_listing_for_same_asset", func(t *testing.T) {
		req := helpers.CreateAuctionRequest{
			NFTRef: "nft1", SellerRef: "seller1",
			StartPrice: decimal.NewFromInt(100), DurationSeconds: 3600,
		}
		_, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", req)
		require.Equal(t, http.StatusCreated, w.Code)

		resp, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", req)
		require.Equal(t, http.StatusConflict, w.Code)
		require.Equal(t, helpers.ReasonAssetAlreadyListed, resp["reason"])
	})
}

func TestCancelAuctionFlow(t *testing.T) {
	env := SetupTestEnv(map[string]string{"nft1": "seller1"})

	resp, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
		NFTRef: "nft1", SellerRef: "seller1",
		StartPrice: decimal.NewFromInt(100), DurationSeconds: 3600,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	auctionID := data(t, resp)["auction_id"].(string)

	// Only the seller may cancel
	resp, w = env.ExecuteRequestAndParse(t, http.MethodDelete, "/auctions/"+auctionID+"?actor_ref=impostor", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, helpers.ReasonNotOwner, resp["reason"])

	_, w = env.ExecuteRequestAndParse(t, http.MethodDelete, "/auctions/"+auctionID+"?actor_ref=seller1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "CANCELLED", data(t, resp)["status"])

	// Cancelling released the asset, so it can be listed again
	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
		NFTRef: "nft1", SellerRef: "seller1",
		StartPrice: decimal.NewFromInt(100), DurationSeconds: 3600,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

// After the sweep ends an auction, further bids are rejected and the winner
// is recorded on the snapshot.
func TestExpiredAuctionRejectsBids(t *testing.T) {
	env := SetupTestEnv(map[string]string{"nft1": "seller1"})

	resp, w := env.ExecuteRequestAndParse(t, http.MethodPost, "/auctions", helpers.CreateAuctionRequest{
		NFTRef: "nft1", SellerRef: "seller1",
		StartPrice: decimal.NewFromInt(100), DurationSeconds: 60,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	auctionID := data(t, resp)["auction_id"].(string)

	_, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/bids", helpers.PlaceBidRequest{
		AuctionID: auctionID, BidderRef: "user1", Amount: decimal.NewFromInt(150),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	closed := env.forceExpiry(t, time.Now().UTC().Add(2*time.Minute))
	require.Equal(t, 1, closed)

	resp, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/bids", helpers.PlaceBidRequest{
		AuctionID: auctionID, BidderRef: "user2", Amount: decimal.NewFromInt(200),
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, helpers.ReasonAuctionNotActive, resp["reason"])

	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/"+auctionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := data(t, resp)
	require.Equal(t, "ENDED", snap["status"])
	require.Equal(t, "user1", snap["winner_ref"])
}

func TestUnknownAuctionLookups(t *testing.T) {
	env := SetupTestEnv(nil)

	resp, w := env.ExecuteRequestAndParse(t, http.MethodGet, "/auctions/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, helpers.ReasonAuctionNotFound, resp["reason"])

	resp, w = env.ExecuteRequestAndParse(t, http.MethodPost, "/bids", helpers.PlaceBidRequest{
		AuctionID: "missing", BidderRef: "user1", Amount: decimal.NewFromInt(100),
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, helpers.ReasonAuctionNotFound, resp["reason"])

	// A user with no bids gets an empty list, not an error
	resp, w = env.ExecuteRequestAndParse(t, http.MethodGet, "/users/nobody/auctions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, resp["data"].([]any))
}
