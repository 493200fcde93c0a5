package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	model "reuse-market/internal/models"

	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned by LoadPage when a newer load started before
// this one finished. The stale results are dropped, not committed.
var ErrSuperseded = errors.New("load superseded by a newer one")

// Listing is a search result joined with its seller's public profile.
type Listing struct {
	Item        model.Item
	SellerName  string
	SellerKarma float64
}

// Browser drives the paginated search view. Each LoadPage takes a
// generation token; only the most recent load may commit its results, so
// a slow response for page 1 can never clobber page 2.
type Browser struct {
	client *Client

	generation atomic.Int64

	mu         sync.Mutex
	query      string
	page       int
	totalPages int
	listings   []Listing
}

// NewBrowser creates a Browser on top of the given client.
func NewBrowser(c *Client) *Browser {
	return &Browser{client: c}
}

// LoadPage fetches one result page plus its page count and the sellers'
// profiles, then commits them if no newer load has started.
func (b *Browser) LoadPage(ctx context.Context, query string, page int) error {
	return b.loadPageAtGeneration(ctx, query, page, b.generation.Add(1))
}

func (b *Browser) loadPageAtGeneration(ctx context.Context, query string, page int, gen int64) error {
	var (
		items      []model.Item
		totalPages int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = b.client.SearchItems(gctx, query, page, 0)
		return err
	})
	g.Go(func() error {
		var err error
		totalPages, err = b.client.NumberOfPages(gctx, query, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sellers, err := b.client.GetMultipleUsers(ctx, sellerIDs(items))
	if err != nil {
		return err
	}

	byID := make(map[string]*model.User, len(sellers))
	for _, seller := range sellers {
		if seller != nil {
			byID[seller.UserID] = seller
		}
	}

	listings := make([]Listing, 0, len(items))
	for _, item := range items {
		listing := Listing{Item: item}
		if seller, ok := byID[item.SellerID]; ok {
			listing.SellerName = seller.Name
			listing.SellerKarma = seller.Karma
		}
		listings = append(listings, listing)
	}

	if b.generation.Load() != gen {
		return ErrSuperseded
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = query
	b.page = page
	b.totalPages = totalPages
	b.listings = listings
	return nil
}

// Listings returns the last committed result page.
func (b *Browser) Listings() []Listing {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listings
}

// TotalPages returns the page count of the last committed load.
func (b *Browser) TotalPages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalPages
}

// Page returns the 1-based page of the last committed load.
func (b *Browser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// Query returns the query of the last committed load.
func (b *Browser) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// sellerIDs collects the distinct seller ids in first-seen order.
func sellerIDs(items []model.Item) []string {
	seen := make(map[string]bool, len(items))
	ids := []string{}
	for _, item := range items {
		if item.SellerID != "" && !seen[item.SellerID] {
			seen[item.SellerID] = true
			ids = append(ids, item.SellerID)
		}
	}
	return ids
}
