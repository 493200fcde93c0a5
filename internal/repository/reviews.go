package repository

import (
	"fmt"

	"reuse-market/internal/marketerrors"
	model "reuse-market/internal/models"
)

// RecordReview inserts a review and applies its karma delta to the
// reviewee in one database transaction. At most one review per
// (bid, reviewer) pair is allowed.
func (r *SQLiteRepo) RecordReview(review model.Review, karmaDelta float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin review transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM reviews WHERE bid_id = ? AND reviewer_id = ?`,
		review.BidID, review.ReviewerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("record review for bid %s: %w", review.BidID, marketerrors.ErrDuplicateReview)
	}

	_, err = tx.Exec(`INSERT INTO reviews (id, bid_id, reviewer_id, reviewee_id, rating, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		review.ReviewID, review.BidID, review.ReviewerID, review.RevieweeID, review.Rating, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record review: %w", err)
	}

	result, err := tx.Exec(`UPDATE users SET karma = karma + ? WHERE id = ?`, karmaDelta, review.RevieweeID)
	if err != nil {
		return fmt.Errorf("failed to adjust karma for user %s: %w", review.RevieweeID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check karma update for user %s: %w", review.RevieweeID, err)
	}
	if affected == 0 {
		return fmt.Errorf("record review for bid %s: %w", review.BidID, marketerrors.ErrUserNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	return nil
}
