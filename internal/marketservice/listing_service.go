package market

import (
	"fmt"
	"strings"
	"time"

	"reuse-market/internal/marketerrors"
	"reuse-market/internal/models"
	"reuse-market/internal/repository"
	"reuse-market/utils"
)

// Search pages are capped server-side regardless of what clients request.
const (
	DefaultPageSize = 10
	MaxPageSize     = 10
	MaxPhotos       = 10
)

// ListingService defines the business logic for item listings.
type ListingService struct {
	repo repository.MarketDB
}

// NewListingService creates a new ListingService instance
func NewListingService(repo repository.MarketDB) *ListingService {
	return &ListingService{
		repo: repo,
	}
}

// CreateItem validates and stores a new listing, returning it with its
// generated id.
func (s *ListingService) CreateItem(item models.Item) (models.Item, error) {
	if err := validateListing(item); err != nil {
		return models.Item{}, err
	}
	if item.SellerID == "" {
		return models.Item{}, fmt.Errorf("service: %w - missing seller", marketerrors.ErrInvalidInput)
	}

	item.ItemID = utils.GenerateID()
	item.Tags = normalizeTags(item.Tags)
	item.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateItem(item); err != nil {
		return models.Item{}, fmt.Errorf("service: failed to create item: %w", err)
	}

	return item, nil
}

// EditItem overwrites a listing's mutable fields. Only the seller may
// edit their listing.
func (s *ListingService) EditItem(itemID, callerID string, item models.Item) (models.Item, error) {
	if itemID == "" {
		return models.Item{}, fmt.Errorf("service: %w - empty item ID", marketerrors.ErrInvalidInput)
	}
	if err := validateListing(item); err != nil {
		return models.Item{}, err
	}

	existing, err := s.repo.GetItem(itemID)
	if err != nil {
		return models.Item{}, fmt.Errorf("service: failed to load item %s: %w", itemID, err)
	}
	if existing.SellerID != callerID {
		return models.Item{}, fmt.Errorf("service: only the seller can edit a listing: %w", marketerrors.ErrForbidden)
	}

	item.ItemID = itemID
	item.Tags = normalizeTags(item.Tags)

	if err := s.repo.UpdateItem(item); err != nil {
		return models.Item{}, fmt.Errorf("service: failed to edit item %s: %w", itemID, err)
	}

	return s.GetItem(itemID)
}

// GetItem returns a single listing.
func (s *ListingService) GetItem(itemID string) (models.Item, error) {
	if itemID == "" {
		return models.Item{}, fmt.Errorf("service: %w - empty item ID", marketerrors.ErrInvalidInput)
	}

	item, err := s.repo.GetItem(itemID)
	if err != nil {
		return models.Item{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}

	return item, nil
}

// AllItems returns every listing, newest first.
func (s *ListingService) AllItems() ([]models.Item, error) {
	items, err := s.repo.AllItems()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list items: %w", err)
	}
	return items, nil
}

// AllItemIDs returns every listing id.
func (s *ListingService) AllItemIDs() ([]string, error) {
	ids, err := s.repo.AllItemIDs()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list item ids: %w", err)
	}
	return ids, nil
}

// SearchItems returns one page of listings matching the name query, newest
// first. Page numbers are 1-based; a page past the end is an empty page.
func (s *ListingService) SearchItems(name string, page, pageSize int) ([]models.Item, error) {
	page, pageSize = clampPaging(page, pageSize)

	items, err := s.repo.SearchItems(name, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("service: failed to search items for %q: %w", name, err)
	}

	return items, nil
}

// NumberOfPages returns how many pages the query spans at the given page
// size.
func (s *ListingService) NumberOfPages(name string, pageSize int) (int, error) {
	_, pageSize = clampPaging(1, pageSize)

	count, err := s.repo.CountItems(name)
	if err != nil {
		return 0, fmt.Errorf("service: failed to count items for %q: %w", name, err)
	}

	return (count + pageSize - 1) / pageSize, nil
}

func clampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func validateListing(item models.Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("service: %w - item name is required", marketerrors.ErrInvalidInput)
	}
	if strings.TrimSpace(item.Quality) == "" {
		return fmt.Errorf("service: %w - item quality is required", marketerrors.ErrInvalidInput)
	}
	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("service: %w - item description is required", marketerrors.ErrInvalidInput)
	}
	if len(item.PhotoURLs) == 0 || len(item.PhotoURLs) > MaxPhotos {
		return fmt.Errorf("service: %w - listings need 1 to %d photos", marketerrors.ErrInvalidInput, MaxPhotos)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
