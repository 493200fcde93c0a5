package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reuse-market/internal/marketerrors"
	"reuse-market/internal/models"
	"reuse-market/internal/repository"
	"reuse-market/utils"
)

// Notifier delivers out-of-band notifications to users.
type Notifier interface {
	IsEnabled() bool
	SendBidAccepted(ctx context.Context, toEmail, itemName, bidID string) error
}

// BiddingService defines the business logic for the bid lifecycle:
// place, cancel, accept, review.
type BiddingService struct {
	repo     repository.MarketDB
	notifier Notifier
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.MarketDB, notifier Notifier) *BiddingService {
	return &BiddingService{
		repo:     repo,
		notifier: notifier,
	}
}

// PlaceBid records a bid by bidderID on itemID and returns the item's full
// bid collection so callers re-sync to server state. A seller cannot bid on
// their own item, and a bidder may hold at most one bid per item.
func (s *BiddingService) PlaceBid(itemID, bidderID string) ([]models.Bid, error) {
	if itemID == "" || bidderID == "" {
		return nil, fmt.Errorf("service: %w - missing itemID or bidderID", marketerrors.ErrInvalidInput)
	}

	item, err := s.repo.GetItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load item %s: %w", itemID, err)
	}
	if item.SellerID == bidderID {
		return nil, fmt.Errorf("service: %w", marketerrors.ErrOwnItemBid)
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		ItemID:    itemID,
		BidderID:  bidderID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.RecordBidForItem(bid); err != nil {
		return nil, fmt.Errorf("service: failed to record bid for item %s by user %s: %w", itemID, bidderID, err)
	}

	return s.repo.GetBidsByItem(itemID)
}

// CancelBid withdraws bidderID's bid on itemID and returns the item's full
// bid collection. Cancelling an absent bid is a no-op.
func (s *BiddingService) CancelBid(itemID, bidderID string) ([]models.Bid, error) {
	if itemID == "" || bidderID == "" {
		return nil, fmt.Errorf("service: %w - missing itemID or bidderID", marketerrors.ErrInvalidInput)
	}

	if err := s.repo.DeleteBid(itemID, bidderID); err != nil {
		return nil, fmt.Errorf("service: failed to cancel bid on item %s by user %s: %w", itemID, bidderID, err)
	}

	return s.repo.GetBidsByItem(itemID)
}

// BidsForItem returns all bids on an item.
func (s *BiddingService) BidsForItem(itemID string) ([]models.Bid, error) {
	if itemID == "" {
		return nil, fmt.Errorf("service: %w - empty item ID", marketerrors.ErrInvalidInput)
	}

	bids, err := s.repo.GetBidsByItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for item %s: %w", itemID, err)
	}

	return bids, nil
}

// AcceptBid marks a bid accepted on behalf of the item's seller, records
// the transaction, notifies the bidder by email, and returns the item's
// full refreshed bid collection. Acceptance is exclusive per item.
func (s *BiddingService) AcceptBid(ctx context.Context, bidID, callerID string) ([]models.Bid, error) {
	if bidID == "" || callerID == "" {
		return nil, fmt.Errorf("service: %w - missing bidID or callerID", marketerrors.ErrInvalidInput)
	}

	bid, err := s.repo.GetBid(bidID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load bid %s: %w", bidID, err)
	}

	item, err := s.repo.GetItem(bid.ItemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load item %s: %w", bid.ItemID, err)
	}
	if item.SellerID != callerID {
		return nil, fmt.Errorf("service: only the seller can accept bids: %w", marketerrors.ErrForbidden)
	}

	accepted, err := s.repo.AcceptBid(bidID, utils.GenerateID())
	if err != nil {
		return nil, fmt.Errorf("service: failed to accept bid %s: %w", bidID, err)
	}

	s.notifyBidder(ctx, accepted, item)

	return s.repo.GetBidsByItem(bid.ItemID)
}

// notifyBidder emails the winning bidder. Delivery failures are logged,
// never surfaced: acceptance has already committed.
func (s *BiddingService) notifyBidder(ctx context.Context, bid models.Bid, item models.Item) {
	if s.notifier == nil || !s.notifier.IsEnabled() {
		return
	}

	bidder, err := s.repo.GetUser(bid.BidderID)
	if err != nil {
		utils.Warn("accept-bid: could not resolve bidder for notification", map[string]any{
			"bid_id":    bid.BidID,
			"bidder_id": bid.BidderID,
			"error":     err.Error(),
		})
		return
	}

	if err := s.notifier.SendBidAccepted(ctx, bidder.Email, item.Name, bid.BidID); err != nil {
		utils.Warn("accept-bid: failed to send acceptance email", map[string]any{
			"bid_id": bid.BidID,
			"email":  bidder.Email,
			"error":  err.Error(),
		})
	}
}

// ReviewUser records a 1-5 rating for one party of an accepted bid and
// adjusts their karma by 5*(rating-3). Both reviewer and reviewee must be
// the bid's bidder or the item's seller, and a reviewer may review a given
// bid only once.
func (s *BiddingService) ReviewUser(bidID, reviewerID, revieweeID string, rating int) error {
	if bidID == "" || reviewerID == "" || revieweeID == "" {
		return fmt.Errorf("service: %w - missing bidID, reviewerID or revieweeID", marketerrors.ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("service: %w", marketerrors.ErrInvalidRating)
	}

	bid, err := s.repo.GetBid(bidID)
	if err != nil {
		return fmt.Errorf("service: failed to load bid %s: %w", bidID, err)
	}
	if !bid.Accepted {
		return fmt.Errorf("service: %w", marketerrors.ErrBidNotAccepted)
	}

	item, err := s.repo.GetItem(bid.ItemID)
	if err != nil {
		return fmt.Errorf("service: failed to load item %s: %w", bid.ItemID, err)
	}

	participants := map[string]bool{bid.BidderID: true, item.SellerID: true}
	if !participants[reviewerID] || !participants[revieweeID] || reviewerID == revieweeID {
		return fmt.Errorf("service: %w", marketerrors.ErrNotParticipant)
	}

	review := models.Review{
		ReviewID:   utils.GenerateID(),
		BidID:      bidID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     rating,
		CreatedAt:  time.Now().UTC(),
	}

	// 3 is neutral, so a rating swings karma by -10..+10.
	karmaDelta := float64(5 * (rating - 3))

	if err := s.repo.RecordReview(review, karmaDelta); err != nil {
		return fmt.Errorf("service: failed to record review for bid %s: %w", bidID, err)
	}

	return nil
}

// AcceptedBids returns a user's accepted bids from the given side of the
// exchange ("seller" or "buyer").
func (s *BiddingService) AcceptedBids(userID, side string) ([]models.Bid, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", marketerrors.ErrInvalidInput)
	}

	var bids []models.Bid
	var err error
	switch side {
	case "seller":
		bids, err = s.repo.AcceptedBidsBySeller(userID)
	case "buyer":
		bids, err = s.repo.AcceptedBidsByBidder(userID)
	default:
		return nil, fmt.Errorf("service: %w - unknown side %q", marketerrors.ErrInvalidInput, side)
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to get accepted bids for user %s: %w", userID, err)
	}

	return bids, nil
}

// CreateTransaction records an exchange explicitly.
func (s *BiddingService) CreateTransaction(itemID, buyerID, sellerID string) (models.Transaction, error) {
	if itemID == "" || buyerID == "" || sellerID == "" {
		return models.Transaction{}, fmt.Errorf("service: %w - missing itemID, buyerID or sellerID", marketerrors.ErrInvalidInput)
	}

	if _, err := s.repo.GetItem(itemID); err != nil {
		if errors.Is(err, marketerrors.ErrItemNotFound) {
			return models.Transaction{}, fmt.Errorf("service: %w", marketerrors.ErrItemNotFound)
		}
		return models.Transaction{}, fmt.Errorf("service: failed to load item %s: %w", itemID, err)
	}

	txn := models.Transaction{
		TransactionID: utils.GenerateID(),
		ItemID:        itemID,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.CreateTransaction(txn); err != nil {
		return models.Transaction{}, fmt.Errorf("service: failed to create transaction: %w", err)
	}

	return txn, nil
}
