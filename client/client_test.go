package client

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reuse-market/internal/auth"
	"reuse-market/internal/config"
	market "reuse-market/internal/marketservice"
	model "reuse-market/internal/models"
	"reuse-market/internal/repository"
	"reuse-market/internal/server"
	"reuse-market/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// newTestServer runs the real router against an in-memory repository.
func newTestServer(t *testing.T) (*httptest.Server, *repository.MemoryRepo) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	auth.InitJWT("test-secret")

	repo := repository.NewMemoryRepo()
	photos, err := storage.NewDiskStore(t.TempDir(), "")
	require.NoError(t, err)

	cfg := &config.Config{
		AllowedOrigins: []string{"*"},
		Environment:    "development",
	}

	router := server.SetupRouter(cfg,
		market.NewListingService(repo),
		market.NewBiddingService(repo, nil),
		market.NewUserService(repo),
		photos,
	)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, repo
}

// signedInSession mints a token the server will accept.
func signedInSession(t *testing.T, userID string) *Session {
	t.Helper()
	token, err := auth.GenerateToken(userID, userID+"@campus.edu")
	require.NoError(t, err)
	return NewSession(token, userID)
}

func seedUser(t *testing.T, repo *repository.MemoryRepo, id string, karma float64) {
	t.Helper()
	require.NoError(t, repo.CreateUser(model.User{
		UserID:    id,
		Name:      "name-" + id,
		Email:     id + "@campus.edu",
		Karma:     karma,
		CreatedAt: time.Now().UTC(),
	}))
}

func writeSessionFile(t *testing.T, dir, projectRef, contents string) {
	t.Helper()
	path := filepath.Join(dir, "sb-"+projectRef+"-auth-token.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

func seedItem(t *testing.T, repo *repository.MemoryRepo, id, sellerID, name string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, repo.CreateItem(model.Item{
		ItemID:      id,
		SellerID:    sellerID,
		Name:        name,
		Description: "desc",
		Quality:     "good",
		PhotoURLs:   []string{"/uploads/" + id + ".jpg"},
		CreatedAt:   createdAt,
	}))
}

func TestClient_ErrorKinds(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx := context.Background()

	t.Run("unknown_item_is_not_found", func(t *testing.T) {
		c := New(ts.URL, nil)
		_, err := c.GetItem(ctx, "ghost")
		require.Error(t, err)
		apiErr := err.(*APIError)
		require.Equal(t, KindNotFound, apiErr.Kind)
		require.Equal(t, 404, apiErr.Status)
		require.NotEmpty(t, apiErr.Message)
		require.True(t, IsNotFound(err))
	})

	t.Run("anonymous_write_is_unauthorized", func(t *testing.T) {
		c := New(ts.URL, nil)
		_, err := c.BidForItem(ctx, "item1")
		require.Error(t, err)
		require.Equal(t, KindUnauthorized, err.(*APIError).Kind)
	})

	t.Run("unreachable_server_is_transport", func(t *testing.T) {
		c := New("http://127.0.0.1:1", nil)
		_, err := c.GetItem(ctx, "item1")
		require.Error(t, err)
		require.Equal(t, KindTransport, err.(*APIError).Kind)
	})
}

func TestBrowser_LoadPage(t *testing.T) {
	ts, repo := newTestServer(t)
	ctx := context.Background()

	seedUser(t, repo, "u1", 12)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedItem(t, repo, "i1", "u1", "hand sanitizer", base)
	seedItem(t, repo, "i2", "u1", "Sanitizer refill", base.Add(time.Hour))
	seedItem(t, repo, "i3", "u1", "office chair", base.Add(2*time.Hour))

	browser := NewBrowser(New(ts.URL, nil))

	require.NoError(t, browser.LoadPage(ctx, "sanitizer", 1))

	listings := browser.Listings()
	require.Len(t, listings, 2)
	require.Equal(t, "i2", listings[0].Item.ItemID, "newest match comes first")
	require.Equal(t, "i1", listings[1].Item.ItemID)
	require.Equal(t, 1, browser.TotalPages())

	for _, listing := range listings {
		require.Equal(t, "name-u1", listing.SellerName)
		require.Equal(t, 12.0, listing.SellerKarma)
	}

	t.Run("empty_query_returns_all", func(t *testing.T) {
		require.NoError(t, browser.LoadPage(ctx, "", 1))
		require.Len(t, browser.Listings(), 3)
	})

	t.Run("page_past_end_is_empty", func(t *testing.T) {
		require.NoError(t, browser.LoadPage(ctx, "sanitizer", 5))
		require.Empty(t, browser.Listings())
		require.Equal(t, 1, browser.TotalPages())
	})
}

func TestBrowser_SupersededLoadIsDropped(t *testing.T) {
	ts, repo := newTestServer(t)
	ctx := context.Background()

	seedUser(t, repo, "u1", 0)
	seedItem(t, repo, "i1", "u1", "lamp", time.Now().UTC())

	browser := NewBrowser(New(ts.URL, nil))

	// Bump the generation as a newer load would, then run an older-style
	// load to completion: it must refuse to commit.
	browser.generation.Add(1)
	gen := browser.generation.Load()
	browser.generation.Add(1)

	err := browser.loadPageAtGeneration(ctx, "lamp", 1, gen)
	require.ErrorIs(t, err, ErrSuperseded)
	require.Empty(t, browser.Listings())
}

func TestItemView_OfferVisibility(t *testing.T) {
	ts, repo := newTestServer(t)
	ctx := context.Background()

	seedUser(t, repo, "seller1", 0)
	seedUser(t, repo, "u2", 0)
	seedItem(t, repo, "abc", "seller1", "bike", time.Now().UTC())

	t.Run("anonymous_viewer_cannot_offer", func(t *testing.T) {
		view := NewItemView(New(ts.URL, nil), NewSession("", ""))
		require.NoError(t, view.Load(ctx, "abc"))
		require.False(t, view.CanOffer())
	})

	t.Run("seller_cannot_offer_on_own_item", func(t *testing.T) {
		session := signedInSession(t, "seller1")
		view := NewItemView(New(ts.URL, session), session)
		require.NoError(t, view.Load(ctx, "abc"))
		require.True(t, view.IsSeller())
		require.False(t, view.CanOffer())
	})

	t.Run("signed_in_non_seller_can_offer", func(t *testing.T) {
		session := signedInSession(t, "u2")
		view := NewItemView(New(ts.URL, session), session)
		require.NoError(t, view.Load(ctx, "abc"))
		require.True(t, view.CanOffer())
	})

	t.Run("unknown_item_sets_not_found", func(t *testing.T) {
		view := NewItemView(New(ts.URL, nil), NewSession("", ""))
		require.NoError(t, view.Load(ctx, "ghost"))
		require.True(t, view.NotFound)
	})
}

func TestItemView_ToggleBid(t *testing.T) {
	ts, repo := newTestServer(t)
	ctx := context.Background()

	seedUser(t, repo, "seller1", 0)
	seedUser(t, repo, "u2", 0)
	seedItem(t, repo, "abc", "seller1", "bike", time.Now().UTC())

	session := signedInSession(t, "u2")
	view := NewItemView(New(ts.URL, session), session)
	require.NoError(t, view.Load(ctx, "abc"))
	require.Equal(t, 0, view.BidCount())

	// First toggle places the bid.
	require.NoError(t, view.ToggleBid(ctx))
	require.Equal(t, 1, view.BidCount())
	placed, present := view.ViewerBid()
	require.True(t, present)
	require.Equal(t, "u2", placed.BidderID)
	require.Equal(t, "name-u2", view.Bidders["u2"].Name)

	// Second toggle withdraws it.
	require.NoError(t, view.ToggleBid(ctx))
	require.Equal(t, 0, view.BidCount())
	_, present = view.ViewerBid()
	require.False(t, present)

	// And a third places it again.
	require.NoError(t, view.ToggleBid(ctx))
	require.Equal(t, 1, view.BidCount())
}

func TestItemView_AcceptAndReview(t *testing.T) {
	ts, repo := newTestServer(t)
	ctx := context.Background()

	seedUser(t, repo, "seller1", 0)
	seedUser(t, repo, "u2", 0)
	seedUser(t, repo, "u3", 0)
	seedItem(t, repo, "abc", "seller1", "bike", time.Now().UTC())

	// Two bidders place bids.
	u2 := signedInSession(t, "u2")
	bidderView := NewItemView(New(ts.URL, u2), u2)
	require.NoError(t, bidderView.Load(ctx, "abc"))
	require.NoError(t, bidderView.ToggleBid(ctx))

	u3 := signedInSession(t, "u3")
	otherView := NewItemView(New(ts.URL, u3), u3)
	require.NoError(t, otherView.Load(ctx, "abc"))
	require.NoError(t, otherView.ToggleBid(ctx))

	// The seller accepts u2's bid.
	sellerSession := signedInSession(t, "seller1")
	sellerView := NewItemView(New(ts.URL, sellerSession), sellerSession)
	require.NoError(t, sellerView.Load(ctx, "abc"))
	require.Equal(t, 2, sellerView.BidCount())

	acceptedID := ""
	for _, bid := range sellerView.Bids {
		if bid.BidderID == "u2" {
			acceptedID = bid.BidID
		}
	}
	require.NotEmpty(t, acceptedID)
	require.NoError(t, sellerView.AcceptBid(ctx, acceptedID))
	require.Equal(t, 2, sellerView.BidCount(), "acceptance replaces, never shrinks, the collection")
	require.Equal(t, 1, sellerView.AcceptedBidCount())

	// A second acceptance on the same item must fail.
	otherID := ""
	for _, bid := range sellerView.Bids {
		if bid.BidderID == "u3" {
			otherID = bid.BidID
		}
	}
	require.Error(t, sellerView.AcceptBid(ctx, otherID))

	// The buyer reviews the seller; the counterparty is derived, and the
	// seller's karma moves by 5*(rating-3).
	require.NoError(t, bidderView.Load(ctx, "abc"))
	require.NoError(t, bidderView.Review(ctx, acceptedID, 5))

	seller, err := New(ts.URL, nil).GetUser(ctx, "seller1")
	require.NoError(t, err)
	require.Equal(t, 10.0, seller.Karma)

	// The same reviewer cannot review the same bid twice.
	err = bidderView.Review(ctx, acceptedID, 5)
	require.Error(t, err)
	require.Equal(t, KindValidation, err.(*APIError).Kind)
}

func TestProfileView(t *testing.T) {
	ts, repo := newTestServer(t)
	ctx := context.Background()

	seedUser(t, repo, "u2", 7)

	t.Run("anonymous_session_redirects", func(t *testing.T) {
		view := NewProfileView(New(ts.URL, nil), NewSession("", ""))
		_, err := view.Load(ctx)
		require.ErrorIs(t, err, ErrSignedOut)
	})

	t.Run("signed_in_fetches_own_record", func(t *testing.T) {
		session := signedInSession(t, "u2")
		view := NewProfileView(New(ts.URL, session), session)
		user, err := view.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, "u2", user.UserID)
		require.Equal(t, 7.0, user.Karma)
	})
}

func TestLoadSession(t *testing.T) {
	t.Run("missing_file_is_anonymous", func(t *testing.T) {
		s := LoadSession(t.TempDir(), "proj")
		require.True(t, s.Ready())
		require.False(t, s.SignedIn())
		require.Empty(t, s.Token())
	})

	t.Run("valid_blob_signs_in", func(t *testing.T) {
		dir := t.TempDir()
		writeSessionFile(t, dir, "proj", `{"access_token":"tok123","user":{"id":"u2"}}`)

		s := LoadSession(dir, "proj")
		require.True(t, s.SignedIn())
		require.Equal(t, "tok123", s.Token())
		require.Equal(t, "u2", s.UserID())
	})

	t.Run("corrupt_blob_is_anonymous", func(t *testing.T) {
		dir := t.TempDir()
		writeSessionFile(t, dir, "proj", `{not json`)

		s := LoadSession(dir, "proj")
		require.True(t, s.Ready())
		require.False(t, s.SignedIn())
	})
}
