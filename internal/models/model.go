package models

import "time"

// User represents a marketplace participant. Karma is an aggregate
// reputation score adjusted by reviews.
type User struct {
	UserID    string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	PfpURL    string    `json:"pfp_url,omitempty"`
	Karma     float64   `json:"karma"`
	CreatedAt time.Time `json:"created_at"`
}

// Item represents a single listing offered by a seller.
type Item struct {
	ItemID        string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Quality       string    `json:"quality"`
	Location      string    `json:"location"`
	Tags          []string  `json:"tags"`
	PhotoURLs     []string  `json:"photo_urls"`
	OtherURLs     []string  `json:"other_urls"`
	CanSelfPickup bool      `json:"can_self_pickup"`
	MailingList   string    `json:"mailing_list,omitempty"`
	Email         string    `json:"email"`
	Price         float64   `json:"price"`
	CreatedAt     time.Time `json:"created_at"`
}

// Bid represents a user's offer on an item. At most one bid per
// (item, bidder) pair exists, and at most one bid per item may be accepted.
type Bid struct {
	BidID     string    `json:"id"`
	ItemID    string    `json:"item_id"`
	BidderID  string    `json:"bidder_id"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction records a completed exchange, created when a bid is accepted.
type Transaction struct {
	TransactionID string    `json:"id"`
	ItemID        string    `json:"item_id"`
	BuyerID       string    `json:"buyer_id"`
	SellerID      string    `json:"seller_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Review is a 1-5 rating submitted by one party of an accepted bid about
// the counterparty. At most one review per (bid, reviewer) pair.
type Review struct {
	ReviewID   string    `json:"id"`
	BidID      string    `json:"bid_id"`
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}
