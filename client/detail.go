package client

import (
	"context"
	"fmt"

	model "reuse-market/internal/models"

	"golang.org/x/sync/errgroup"
)

// ItemView drives a single listing's detail page: the item, its seller,
// its bid collection and the bidders' profiles. The bid collection is
// always whatever the server last returned, never locally mutated.
type ItemView struct {
	client  *Client
	session *Session

	Item     model.Item
	Seller   *model.User
	Bids     []model.Bid
	Bidders  map[string]*model.User
	NotFound bool
}

// NewItemView creates an ItemView for the given viewer.
func NewItemView(c *Client, session *Session) *ItemView {
	return &ItemView{client: c, session: session}
}

// Load fetches the item and, when it exists, its seller, bids and bidder
// profiles. An unknown item sets NotFound and issues no further requests.
func (v *ItemView) Load(ctx context.Context, itemID string) error {
	item, err := v.client.GetItem(ctx, itemID)
	if err != nil {
		if IsNotFound(err) {
			v.NotFound = true
			return nil
		}
		return err
	}
	v.Item = item
	v.NotFound = false

	var (
		seller model.User
		bids   []model.Bid
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seller, err = v.client.GetUser(gctx, item.SellerID)
		return err
	})
	g.Go(func() error {
		var err error
		bids, err = v.client.GetBidsForItem(gctx, itemID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	v.Seller = &seller
	v.Bids = bids
	return v.loadBidders(ctx)
}

func (v *ItemView) loadBidders(ctx context.Context) error {
	ids := []string{}
	seen := map[string]bool{}
	for _, bid := range v.Bids {
		if !seen[bid.BidderID] {
			seen[bid.BidderID] = true
			ids = append(ids, bid.BidderID)
		}
	}

	v.Bidders = map[string]*model.User{}
	if len(ids) == 0 {
		return nil
	}

	users, err := v.client.GetMultipleUsers(ctx, ids)
	if err != nil {
		return err
	}
	for _, user := range users {
		if user != nil {
			v.Bidders[user.UserID] = user
		}
	}
	return nil
}

// IsSeller reports whether the viewer owns this listing.
func (v *ItemView) IsSeller() bool {
	return v.session.SignedIn() && v.session.UserID() == v.Item.SellerID
}

// CanOffer reports whether the viewer may place or withdraw a bid:
// signed in and not the seller.
func (v *ItemView) CanOffer() bool {
	return v.session.SignedIn() && !v.IsSeller()
}

// ViewerBid returns the viewer's bid from the last-synced collection.
func (v *ItemView) ViewerBid() (model.Bid, bool) {
	for _, bid := range v.Bids {
		if bid.BidderID == v.session.UserID() {
			return bid, true
		}
	}
	return model.Bid{}, false
}

// ToggleBid places the viewer's bid if absent, withdraws it if present.
// Presence is judged against the last-synced collection, and the
// collection is replaced wholesale with what the server returns.
func (v *ItemView) ToggleBid(ctx context.Context) error {
	if !v.CanOffer() {
		return fmt.Errorf("viewer cannot bid on this listing")
	}

	var (
		bids []model.Bid
		err  error
	)
	if _, present := v.ViewerBid(); present {
		bids, err = v.client.CancelBid(ctx, v.Item.ItemID)
	} else {
		bids, err = v.client.BidForItem(ctx, v.Item.ItemID)
	}
	if err != nil {
		return err
	}

	v.Bids = bids
	return v.loadBidders(ctx)
}

// AcceptBid accepts one bid on the viewer's listing and replaces the
// collection with the server's refreshed set.
func (v *ItemView) AcceptBid(ctx context.Context, bidID string) error {
	if !v.IsSeller() {
		return fmt.Errorf("only the seller can accept bids")
	}

	bids, err := v.client.AcceptBid(ctx, bidID)
	if err != nil {
		return err
	}

	v.Bids = bids
	return nil
}

// Review rates the counterparty of an accepted bid. The reviewee is
// derived from the viewer's role: bidders review the seller, the seller
// reviews the bidder.
func (v *ItemView) Review(ctx context.Context, bidID string, rating int) error {
	var reviewee string
	for _, bid := range v.Bids {
		if bid.BidID == bidID {
			if bid.BidderID == v.session.UserID() {
				reviewee = v.Item.SellerID
			} else {
				reviewee = bid.BidderID
			}
			break
		}
	}
	if reviewee == "" {
		return fmt.Errorf("bid %s is not part of this listing", bidID)
	}

	return v.client.ReviewUser(ctx, bidID, reviewee, rating)
}

// BidCount returns the size of the last-synced collection.
func (v *ItemView) BidCount() int {
	return len(v.Bids)
}

// AcceptedBidCount returns how many synced bids are accepted.
func (v *ItemView) AcceptedBidCount() int {
	n := 0
	for _, bid := range v.Bids {
		if bid.Accepted {
			n++
		}
	}
	return n
}
