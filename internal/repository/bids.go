package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"reuse-market/internal/marketerrors"
	model "reuse-market/internal/models"
)

// RecordBidForItem inserts a bid, enforcing at most one bid per
// (item, bidder) pair.
func (r *SQLiteRepo) RecordBidForItem(bid model.Bid) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin bid transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM items WHERE id = ?`, bid.ItemID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check item %s: %w", bid.ItemID, err)
	}
	if exists == 0 {
		return fmt.Errorf("record bid for item %s: %w", bid.ItemID, marketerrors.ErrItemNotFound)
	}

	err = tx.QueryRow(`SELECT COUNT(*) FROM bids WHERE item_id = ? AND bidder_id = ?`,
		bid.ItemID, bid.BidderID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing bid: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("record bid for item %s: %w", bid.ItemID, marketerrors.ErrDuplicateBid)
	}

	_, err = tx.Exec(`INSERT INTO bids (id, item_id, bidder_id, accepted, created_at) VALUES (?, ?, ?, ?, ?)`,
		bid.BidID, bid.ItemID, bid.BidderID, bid.Accepted, bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bid: %w", err)
	}

	return nil
}

// DeleteBid withdraws a bidder's bid on an item. Deleting a bid that does
// not exist is not an error, matching the cancel endpoint's semantics.
func (r *SQLiteRepo) DeleteBid(itemID, bidderID string) error {
	_, err := r.db.Exec(`DELETE FROM bids WHERE item_id = ? AND bidder_id = ?`, itemID, bidderID)
	if err != nil {
		return fmt.Errorf("failed to delete bid on item %s: %w", itemID, err)
	}
	return nil
}

// GetBid returns a single bid by id.
func (r *SQLiteRepo) GetBid(bidID string) (model.Bid, error) {
	var bid model.Bid
	err := r.db.QueryRow(`SELECT id, item_id, bidder_id, accepted, created_at FROM bids WHERE id = ?`, bidID).
		Scan(&bid.BidID, &bid.ItemID, &bid.BidderID, &bid.Accepted, &bid.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, marketerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("failed to get bid %s: %w", bidID, err)
	}
	return bid, nil
}

// GetBidsByItem returns all bids on an item, oldest first.
func (r *SQLiteRepo) GetBidsByItem(itemID string) ([]model.Bid, error) {
	rows, err := r.db.Query(`SELECT id, item_id, bidder_id, accepted, created_at FROM bids WHERE item_id = ? ORDER BY created_at`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids for item %s: %w", itemID, err)
	}
	defer rows.Close()

	return collectBids(rows)
}

// AcceptBid marks a bid accepted and records the resulting transaction in
// one database transaction. It fails if the bid is already accepted or if
// any other bid on the same item has been accepted, so at most one bid per
// item ever holds accepted = true.
func (r *SQLiteRepo) AcceptBid(bidID, transactionID string) (model.Bid, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return model.Bid{}, fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer tx.Rollback()

	var bid model.Bid
	err = tx.QueryRow(`SELECT id, item_id, bidder_id, accepted, created_at FROM bids WHERE id = ?`, bidID).
		Scan(&bid.BidID, &bid.ItemID, &bid.BidderID, &bid.Accepted, &bid.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("accept bid %s: %w", bidID, marketerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("failed to load bid %s: %w", bidID, err)
	}

	if bid.Accepted {
		return model.Bid{}, fmt.Errorf("accept bid %s: %w", bidID, marketerrors.ErrBidAlreadyAccepted)
	}

	var acceptedOnItem int
	err = tx.QueryRow(`SELECT COUNT(*) FROM bids WHERE item_id = ? AND accepted = TRUE`, bid.ItemID).Scan(&acceptedOnItem)
	if err != nil {
		return model.Bid{}, fmt.Errorf("failed to check accepted bids on item %s: %w", bid.ItemID, err)
	}
	if acceptedOnItem > 0 {
		return model.Bid{}, fmt.Errorf("accept bid %s: %w", bidID, marketerrors.ErrItemAlreadySold)
	}

	var sellerID string
	err = tx.QueryRow(`SELECT seller_id FROM items WHERE id = ?`, bid.ItemID).Scan(&sellerID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("failed to load item %s for accept: %w", bid.ItemID, err)
	}

	if _, err := tx.Exec(`UPDATE bids SET accepted = TRUE WHERE id = ?`, bidID); err != nil {
		return model.Bid{}, fmt.Errorf("failed to accept bid %s: %w", bidID, err)
	}

	_, err = tx.Exec(`INSERT INTO transactions (id, item_id, buyer_id, seller_id, created_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		transactionID, bid.ItemID, bid.BidderID, sellerID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("failed to record transaction for bid %s: %w", bidID, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Bid{}, fmt.Errorf("failed to commit accept of bid %s: %w", bidID, err)
	}

	bid.Accepted = true
	return bid, nil
}

// AcceptedBidsBySeller returns accepted bids on items listed by the user.
func (r *SQLiteRepo) AcceptedBidsBySeller(sellerID string) ([]model.Bid, error) {
	query := `
		SELECT b.id, b.item_id, b.bidder_id, b.accepted, b.created_at
		FROM bids b
		JOIN items i ON b.item_id = i.id
		WHERE i.seller_id = ? AND b.accepted = TRUE
		ORDER BY b.created_at
	`

	rows, err := r.db.Query(query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accepted bids for seller %s: %w", sellerID, err)
	}
	defer rows.Close()

	return collectBids(rows)
}

// AcceptedBidsByBidder returns the user's accepted bids on others' items.
func (r *SQLiteRepo) AcceptedBidsByBidder(bidderID string) ([]model.Bid, error) {
	rows, err := r.db.Query(`SELECT id, item_id, bidder_id, accepted, created_at FROM bids WHERE bidder_id = ? AND accepted = TRUE ORDER BY created_at`, bidderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accepted bids for bidder %s: %w", bidderID, err)
	}
	defer rows.Close()

	return collectBids(rows)
}

func collectBids(rows *sql.Rows) ([]model.Bid, error) {
	bids := []model.Bid{}
	for rows.Next() {
		var bid model.Bid
		if err := rows.Scan(&bid.BidID, &bid.ItemID, &bid.BidderID, &bid.Accepted, &bid.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}
