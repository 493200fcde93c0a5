package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"reuse-market/internal/marketerrors"
	model "reuse-market/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of MarketDB,
// used by tests and benchmarks.
type MemoryRepo struct {
	mu           sync.RWMutex
	users        map[string]model.User
	items        map[string]model.Item
	bids         map[string]model.Bid              // key: bidID
	itemBids     map[string][]string               // key: itemID -> ordered bidIDs
	transactions map[string]model.Transaction      // key: transactionID
	reviews      map[string]map[string]model.Review // key: bidID -> reviewerID -> review
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:        make(map[string]model.User),
		items:        make(map[string]model.Item),
		bids:         make(map[string]model.Bid),
		itemBids:     make(map[string][]string),
		transactions: make(map[string]model.Transaction),
		reviews:      make(map[string]map[string]model.Review),
	}
}

func (r *MemoryRepo) CreateUser(user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

func (r *MemoryRepo) GetUser(userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, marketerrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *MemoryRepo) AdjustKarma(userID string, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("adjust karma for user %s: %w", userID, marketerrors.ErrUserNotFound)
	}
	user.Karma += delta
	r.users[userID] = user
	return nil
}

func (r *MemoryRepo) CreateItem(item model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ItemID] = item
	return nil
}

func (r *MemoryRepo) GetItem(itemID string) (model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, marketerrors.ErrItemNotFound)
	}
	return item, nil
}

func (r *MemoryRepo) UpdateItem(item model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ItemID]
	if !ok {
		return fmt.Errorf("update item %s: %w", item.ItemID, marketerrors.ErrItemNotFound)
	}
	item.SellerID = existing.SellerID
	item.CreatedAt = existing.CreatedAt
	r.items[item.ItemID] = item
	return nil
}

func (r *MemoryRepo) AllItems() ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedItems(""), nil
}

func (r *MemoryRepo) AllItemIDs() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MemoryRepo) SearchItems(name string, offset, limit int) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sortedItems(name)
	if offset >= len(matched) {
		return []model.Item{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *MemoryRepo) CountItems(name string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sortedItems(name)), nil
}

// sortedItems returns matching items newest first. Callers hold the lock.
func (r *MemoryRepo) sortedItems(name string) []model.Item {
	needle := strings.ToLower(name)
	matched := []model.Item{}
	for _, item := range r.items {
		if needle == "" || strings.Contains(strings.ToLower(item.Name), needle) {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ItemID < matched[j].ItemID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

func (r *MemoryRepo) RecordBidForItem(bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[bid.ItemID]; !ok {
		return fmt.Errorf("record bid for item %s: %w", bid.ItemID, marketerrors.ErrItemNotFound)
	}

	for _, id := range r.itemBids[bid.ItemID] {
		if r.bids[id].BidderID == bid.BidderID {
			return fmt.Errorf("record bid for item %s: %w", bid.ItemID, marketerrors.ErrDuplicateBid)
		}
	}

	r.bids[bid.BidID] = bid
	r.itemBids[bid.ItemID] = append(r.itemBids[bid.ItemID], bid.BidID)
	return nil
}

func (r *MemoryRepo) DeleteBid(itemID, bidderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.itemBids[itemID]
	for i, id := range ids {
		if r.bids[id].BidderID == bidderID {
			delete(r.bids, id)
			r.itemBids[itemID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryRepo) GetBid(bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, ok := r.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, marketerrors.ErrBidNotFound)
	}
	return bid, nil
}

func (r *MemoryRepo) GetBidsByItem(itemID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := []model.Bid{}
	for _, id := range r.itemBids[itemID] {
		bids = append(bids, r.bids[id])
	}
	return bids, nil
}

func (r *MemoryRepo) AcceptBid(bidID, transactionID string) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("accept bid %s: %w", bidID, marketerrors.ErrBidNotFound)
	}
	if bid.Accepted {
		return model.Bid{}, fmt.Errorf("accept bid %s: %w", bidID, marketerrors.ErrBidAlreadyAccepted)
	}
	for _, id := range r.itemBids[bid.ItemID] {
		if r.bids[id].Accepted {
			return model.Bid{}, fmt.Errorf("accept bid %s: %w", bidID, marketerrors.ErrItemAlreadySold)
		}
	}

	bid.Accepted = true
	r.bids[bidID] = bid

	item := r.items[bid.ItemID]
	r.transactions[transactionID] = model.Transaction{
		TransactionID: transactionID,
		ItemID:        bid.ItemID,
		BuyerID:       bid.BidderID,
		SellerID:      item.SellerID,
		CreatedAt:     time.Now().UTC(),
	}
	return bid, nil
}

func (r *MemoryRepo) AcceptedBidsBySeller(sellerID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := []model.Bid{}
	for itemID, bidIDs := range r.itemBids {
		if item, ok := r.items[itemID]; !ok || item.SellerID != sellerID {
			continue
		}
		for _, id := range bidIDs {
			if bid := r.bids[id]; bid.Accepted {
				bids = append(bids, bid)
			}
		}
	}
	sortBids(bids)
	return bids, nil
}

func (r *MemoryRepo) AcceptedBidsByBidder(bidderID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := []model.Bid{}
	for _, bid := range r.bids {
		if bid.BidderID == bidderID && bid.Accepted {
			bids = append(bids, bid)
		}
	}
	sortBids(bids)
	return bids, nil
}

func (r *MemoryRepo) CreateTransaction(txn model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[txn.TransactionID] = txn
	return nil
}

func (r *MemoryRepo) RecordReview(review model.Review, karmaDelta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byReviewer, ok := r.reviews[review.BidID]
	if !ok {
		byReviewer = make(map[string]model.Review)
		r.reviews[review.BidID] = byReviewer
	}
	if _, dup := byReviewer[review.ReviewerID]; dup {
		return fmt.Errorf("record review for bid %s: %w", review.BidID, marketerrors.ErrDuplicateReview)
	}

	user, ok := r.users[review.RevieweeID]
	if !ok {
		return fmt.Errorf("record review for bid %s: %w", review.BidID, marketerrors.ErrUserNotFound)
	}

	byReviewer[review.ReviewerID] = review
	user.Karma += karmaDelta
	r.users[review.RevieweeID] = user
	return nil
}

func sortBids(bids []model.Bid) {
	sort.Slice(bids, func(i, j int) bool {
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})
}
