package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"reuse-market/internal/marketerrors"
	model "reuse-market/internal/models"
	"reuse-market/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Tests PlaceBid
func TestBiddingService_PlaceBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockMarketDB(ctrl)
	service := NewBiddingService(mockRepo, nil)

	now := time.Now().UTC()
	item := model.Item{ItemID: "item1", SellerID: "seller1", Name: "desk lamp"}

	// Table-driven test cases
	tests := []struct {
		name          string
		itemID        string
		bidderID      string
		mockSetup     func()
		expectError   bool
		expectedError error
		expectedLen   int
	}{
		{
			name:     "valid_first_bid",
			itemID:   "item1",
			bidderID: "user2",
			mockSetup: func() {
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
				mockRepo.EXPECT().RecordBidForItem(gomock.Any()).DoAndReturn(func(bid model.Bid) error {
					require.Equal(t, "item1", bid.ItemID)
					require.Equal(t, "user2", bid.BidderID)
					_, parseErr := uuid.Parse(bid.BidID)
					require.NoError(t, parseErr)
					require.False(t, bid.Accepted)
					return nil
				})
				mockRepo.EXPECT().GetBidsByItem("item1").Return([]model.Bid{
					{BidID: "b1", ItemID: "item1", BidderID: "user2", CreatedAt: now},
				}, nil)
			},
			expectedLen: 1,
		},
		{
			name:          "empty_itemID",
			itemID:        "",
			bidderID:      "user2",
			mockSetup:     func() {},
			expectError:   true,
			expectedError: marketerrors.ErrInvalidInput,
		},
		{
			name:          "empty_bidderID",
			itemID:        "item1",
			bidderID:      "",
			mockSetup:     func() {},
			expectError:   true,
			expectedError: marketerrors.ErrInvalidInput,
		},
		{
			name:     "seller_bids_on_own_item",
			itemID:   "item1",
			bidderID: "seller1",
			mockSetup: func() {
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
			},
			expectError:   true,
			expectedError: marketerrors.ErrOwnItemBid,
		},
		{
			name:     "unknown_item",
			itemID:   "ghost",
			bidderID: "user2",
			mockSetup: func() {
				mockRepo.EXPECT().GetItem("ghost").Return(model.Item{}, marketerrors.ErrItemNotFound)
			},
			expectError:   true,
			expectedError: marketerrors.ErrItemNotFound,
		},
		{
			name:     "duplicate_bid",
			itemID:   "item1",
			bidderID: "user2",
			mockSetup: func() {
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
				mockRepo.EXPECT().RecordBidForItem(gomock.Any()).Return(marketerrors.ErrDuplicateBid)
			},
			expectError:   true,
			expectedError: marketerrors.ErrDuplicateBid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			bids, err := service.PlaceBid(tc.itemID, tc.bidderID)

			if tc.expectError {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.Len(t, bids, tc.expectedLen)
		})
	}
}

// Tests CancelBid
func TestBiddingService_CancelBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockMarketDB(ctrl)
	service := NewBiddingService(mockRepo, nil)

	t.Run("returns_remaining_collection", func(t *testing.T) {
		mockRepo.EXPECT().DeleteBid("item1", "user2").Return(nil)
		mockRepo.EXPECT().GetBidsByItem("item1").Return([]model.Bid{
			{BidID: "b1", ItemID: "item1", BidderID: "user3"},
		}, nil)

		bids, err := service.CancelBid("item1", "user2")
		require.NoError(t, err)
		require.Len(t, bids, 1)
		require.Equal(t, "user3", bids[0].BidderID)
	})

	t.Run("missing_bid", func(t *testing.T) {
		mockRepo.EXPECT().DeleteBid("item1", "user9").Return(marketerrors.ErrBidNotFound)

		_, err := service.CancelBid("item1", "user9")
		require.ErrorIs(t, err, marketerrors.ErrBidNotFound)
	})

	t.Run("empty_input", func(t *testing.T) {
		_, err := service.CancelBid("", "user2")
		require.ErrorIs(t, err, marketerrors.ErrInvalidInput)
	})
}

type stubNotifier struct {
	enabled bool
	sentTo  string
	item    string
	bid     string
	err     error
}

func (n *stubNotifier) IsEnabled() bool { return n.enabled }

func (n *stubNotifier) SendBidAccepted(_ context.Context, toEmail, itemName, bidID string) error {
	n.sentTo = toEmail
	n.item = itemName
	n.bid = bidID
	return n.err
}

// Tests AcceptBid
func TestBiddingService_AcceptBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockMarketDB(ctrl)

	item := model.Item{ItemID: "item1", SellerID: "seller1", Name: "desk lamp"}
	bid := model.Bid{BidID: "b2", ItemID: "item1", BidderID: "user2"}
	accepted := model.Bid{BidID: "b2", ItemID: "item1", BidderID: "user2", Accepted: true}

	t.Run("seller_accepts_and_bidder_is_notified", func(t *testing.T) {
		notifier := &stubNotifier{enabled: true}
		service := NewBiddingService(mockRepo, notifier)

		mockRepo.EXPECT().GetBid("b2").Return(bid, nil)
		mockRepo.EXPECT().GetItem("item1").Return(item, nil)
		mockRepo.EXPECT().AcceptBid("b2", gomock.Any()).Return(accepted, nil)
		mockRepo.EXPECT().GetUser("user2").Return(model.User{UserID: "user2", Email: "user2@campus.edu"}, nil)
		mockRepo.EXPECT().GetBidsByItem("item1").Return([]model.Bid{accepted}, nil)

		bids, err := service.AcceptBid(context.Background(), "b2", "seller1")
		require.NoError(t, err)
		require.Len(t, bids, 1)
		require.True(t, bids[0].Accepted)
		require.Equal(t, "user2@campus.edu", notifier.sentTo)
		require.Equal(t, "desk lamp", notifier.item)
	})

	t.Run("notification_failure_does_not_fail_acceptance", func(t *testing.T) {
		notifier := &stubNotifier{enabled: true, err: errors.New("smtp down")}
		service := NewBiddingService(mockRepo, notifier)

		mockRepo.EXPECT().GetBid("b2").Return(bid, nil)
		mockRepo.EXPECT().GetItem("item1").Return(item, nil)
		mockRepo.EXPECT().AcceptBid("b2", gomock.Any()).Return(accepted, nil)
		mockRepo.EXPECT().GetUser("user2").Return(model.User{UserID: "user2", Email: "user2@campus.edu"}, nil)
		mockRepo.EXPECT().GetBidsByItem("item1").Return([]model.Bid{accepted}, nil)

		_, err := service.AcceptBid(context.Background(), "b2", "seller1")
		require.NoError(t, err)
	})

	t.Run("non_seller_is_rejected", func(t *testing.T) {
		service := NewBiddingService(mockRepo, nil)

		mockRepo.EXPECT().GetBid("b2").Return(bid, nil)
		mockRepo.EXPECT().GetItem("item1").Return(item, nil)

		_, err := service.AcceptBid(context.Background(), "b2", "user9")
		require.ErrorIs(t, err, marketerrors.ErrForbidden)
	})

	t.Run("second_accept_on_item_fails", func(t *testing.T) {
		service := NewBiddingService(mockRepo, nil)

		mockRepo.EXPECT().GetBid("b2").Return(bid, nil)
		mockRepo.EXPECT().GetItem("item1").Return(item, nil)
		mockRepo.EXPECT().AcceptBid("b2", gomock.Any()).Return(model.Bid{}, marketerrors.ErrItemAlreadySold)

		_, err := service.AcceptBid(context.Background(), "b2", "seller1")
		require.ErrorIs(t, err, marketerrors.ErrItemAlreadySold)
	})
}

// Tests ReviewUser
func TestBiddingService_ReviewUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockMarketDB(ctrl)
	service := NewBiddingService(mockRepo, nil)

	item := model.Item{ItemID: "item1", SellerID: "seller1"}
	acceptedBid := model.Bid{BidID: "b2", ItemID: "item1", BidderID: "user2", Accepted: true}

	tests := []struct {
		name          string
		reviewerID    string
		revieweeID    string
		rating        int
		mockSetup     func()
		expectedError error
		expectedDelta float64
	}{
		{
			name:       "five_stars_adds_ten_karma",
			reviewerID: "user2",
			revieweeID: "seller1",
			rating:     5,
			mockSetup: func() {
				mockRepo.EXPECT().GetBid("b2").Return(acceptedBid, nil)
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
				mockRepo.EXPECT().RecordReview(gomock.Any(), 10.0).Return(nil)
			},
			expectedDelta: 10,
		},
		{
			name:       "one_star_removes_ten_karma",
			reviewerID: "seller1",
			revieweeID: "user2",
			rating:     1,
			mockSetup: func() {
				mockRepo.EXPECT().GetBid("b2").Return(acceptedBid, nil)
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
				mockRepo.EXPECT().RecordReview(gomock.Any(), -10.0).Return(nil)
			},
			expectedDelta: -10,
		},
		{
			name:       "neutral_rating_is_zero_delta",
			reviewerID: "user2",
			revieweeID: "seller1",
			rating:     3,
			mockSetup: func() {
				mockRepo.EXPECT().GetBid("b2").Return(acceptedBid, nil)
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
				mockRepo.EXPECT().RecordReview(gomock.Any(), 0.0).Return(nil)
			},
		},
		{
			name:          "rating_zero_rejected",
			reviewerID:    "user2",
			revieweeID:    "seller1",
			rating:        0,
			mockSetup:     func() {},
			expectedError: marketerrors.ErrInvalidRating,
		},
		{
			name:          "rating_six_rejected",
			reviewerID:    "user2",
			revieweeID:    "seller1",
			rating:        6,
			mockSetup:     func() {},
			expectedError: marketerrors.ErrInvalidRating,
		},
		{
			name:       "bid_not_accepted",
			reviewerID: "user2",
			revieweeID: "seller1",
			rating:     4,
			mockSetup: func() {
				mockRepo.EXPECT().GetBid("b2").Return(model.Bid{BidID: "b2", ItemID: "item1", BidderID: "user2"}, nil)
			},
			expectedError: marketerrors.ErrBidNotAccepted,
		},
		{
			name:       "outsider_cannot_review",
			reviewerID: "user9",
			revieweeID: "seller1",
			rating:     4,
			mockSetup: func() {
				mockRepo.EXPECT().GetBid("b2").Return(acceptedBid, nil)
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
			},
			expectedError: marketerrors.ErrNotParticipant,
		},
		{
			name:       "self_review_rejected",
			reviewerID: "user2",
			revieweeID: "user2",
			rating:     4,
			mockSetup: func() {
				mockRepo.EXPECT().GetBid("b2").Return(acceptedBid, nil)
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
			},
			expectedError: marketerrors.ErrNotParticipant,
		},
		{
			name:       "second_review_of_same_bid_rejected",
			reviewerID: "user2",
			revieweeID: "seller1",
			rating:     4,
			mockSetup: func() {
				mockRepo.EXPECT().GetBid("b2").Return(acceptedBid, nil)
				mockRepo.EXPECT().GetItem("item1").Return(item, nil)
				mockRepo.EXPECT().RecordReview(gomock.Any(), 5.0).Return(marketerrors.ErrDuplicateReview)
			},
			expectedError: marketerrors.ErrDuplicateReview,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			err := service.ReviewUser("b2", tc.reviewerID, tc.revieweeID, tc.rating)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
		})
	}
}

// Tests AcceptedBids
func TestBiddingService_AcceptedBids(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockMarketDB(ctrl)
	service := NewBiddingService(mockRepo, nil)

	t.Run("seller_side", func(t *testing.T) {
		mockRepo.EXPECT().AcceptedBidsBySeller("seller1").Return([]model.Bid{{BidID: "b2", Accepted: true}}, nil)

		bids, err := service.AcceptedBids("seller1", "seller")
		require.NoError(t, err)
		require.Len(t, bids, 1)
	})

	t.Run("buyer_side", func(t *testing.T) {
		mockRepo.EXPECT().AcceptedBidsByBidder("user2").Return([]model.Bid{}, nil)

		bids, err := service.AcceptedBids("user2", "buyer")
		require.NoError(t, err)
		require.Empty(t, bids)
	})

	t.Run("unknown_side", func(t *testing.T) {
		_, err := service.AcceptedBids("user2", "lurker")
		require.ErrorIs(t, err, marketerrors.ErrInvalidInput)
	})
}
