package repository

import (
	"fmt"

	model "reuse-market/internal/models"
)

// CreateTransaction inserts a transaction row directly. Accepting a bid
// records its transaction atomically; this path serves the explicit
// create-new-transaction endpoint.
func (r *SQLiteRepo) CreateTransaction(txn model.Transaction) error {
	query := `
		INSERT INTO transactions (id, item_id, buyer_id, seller_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, txn.TransactionID, txn.ItemID, txn.BuyerID, txn.SellerID, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}
