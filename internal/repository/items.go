package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"reuse-market/internal/marketerrors"
	model "reuse-market/internal/models"
)

const itemColumns = `id, seller_id, name, description, quality, location, tags,
	photo_urls, other_urls, can_self_pickup, mailing_list, email, price, created_at`

// CreateItem inserts a new listing.
func (r *SQLiteRepo) CreateItem(item model.Item) error {
	tags, photos, others, err := encodeItemLists(item)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO items (id, seller_id, name, description, quality, location, tags,
			photo_urls, other_urls, can_self_pickup, mailing_list, email, price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, item.ItemID, item.SellerID, item.Name, item.Description,
		item.Quality, item.Location, tags, photos, others, item.CanSelfPickup,
		item.MailingList, item.Email, item.Price, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetItem returns the listing with the given id.
func (r *SQLiteRepo) GetItem(itemID string) (model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	item, err := scanItem(r.db.QueryRow(query, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, marketerrors.ErrItemNotFound)
	}
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to get item %s: %w", itemID, err)
	}

	return item, nil
}

// UpdateItem overwrites the mutable fields of a listing.
func (r *SQLiteRepo) UpdateItem(item model.Item) error {
	tags, photos, others, err := encodeItemLists(item)
	if err != nil {
		return err
	}

	query := `
		UPDATE items
		SET name = ?, description = ?, quality = ?, location = ?, tags = ?,
			photo_urls = ?, other_urls = ?, can_self_pickup = ?, email = ?, price = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, item.Name, item.Description, item.Quality,
		item.Location, tags, photos, others, item.CanSelfPickup, item.Email,
		item.Price, item.ItemID)
	if err != nil {
		return fmt.Errorf("failed to update item %s: %w", item.ItemID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check item update %s: %w", item.ItemID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update item %s: %w", item.ItemID, marketerrors.ErrItemNotFound)
	}

	return nil
}

// AllItems returns every listing, newest first.
func (r *SQLiteRepo) AllItems() ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// AllItemIDs returns the ids of every listing.
func (r *SQLiteRepo) AllItemIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("failed to query item ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item ids: %w", err)
	}

	return ids, nil
}

// SearchItems returns a page of listings whose name contains the search
// term (case-insensitive), newest first. An empty term matches everything.
func (r *SQLiteRepo) SearchItems(name string, offset, limit int) ([]model.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE name LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Query(query, name, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// CountItems returns how many listings match the search term.
func (r *SQLiteRepo) CountItems(name string) (int, error) {
	query := `SELECT COUNT(*) FROM items WHERE name LIKE '%' || ? || '%' COLLATE NOCASE`

	var count int
	if err := r.db.QueryRow(query, name).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var item model.Item
	var tags, photos, others string

	err := row.Scan(
		&item.ItemID,
		&item.SellerID,
		&item.Name,
		&item.Description,
		&item.Quality,
		&item.Location,
		&tags,
		&photos,
		&others,
		&item.CanSelfPickup,
		&item.MailingList,
		&item.Email,
		&item.Price,
		&item.CreatedAt,
	)
	if err != nil {
		return model.Item{}, err
	}

	if err := decodeItemLists(&item, tags, photos, others); err != nil {
		return model.Item{}, err
	}

	return item, nil
}

func collectItems(rows *sql.Rows) ([]model.Item, error) {
	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// String lists are stored as JSON text columns.
func encodeItemLists(item model.Item) (tags, photos, others string, err error) {
	for _, pair := range []struct {
		dst *string
		src []string
	}{
		{&tags, item.Tags},
		{&photos, item.PhotoURLs},
		{&others, item.OtherURLs},
	} {
		if pair.src == nil {
			pair.src = []string{}
		}
		raw, merr := json.Marshal(pair.src)
		if merr != nil {
			return "", "", "", fmt.Errorf("failed to encode item lists: %w", merr)
		}
		*pair.dst = string(raw)
	}
	return tags, photos, others, nil
}

func decodeItemLists(item *model.Item, tags, photos, others string) error {
	for _, pair := range []struct {
		dst *[]string
		src string
	}{
		{&item.Tags, tags},
		{&item.PhotoURLs, photos},
		{&item.OtherURLs, others},
	} {
		if pair.src == "" {
			*pair.dst = []string{}
			continue
		}
		if err := json.Unmarshal([]byte(pair.src), pair.dst); err != nil {
			return fmt.Errorf("failed to decode item lists: %w", err)
		}
	}
	return nil
}
