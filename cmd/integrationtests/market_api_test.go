package integrationtests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	model "reuse-market/internal/models"
	"reuse-market/services/market/helpers"

	"github.com/stretchr/testify/require"
)

// Bid lifecycle through the HTTP API
func TestBidLifecycle(t *testing.T) {
	router := SetupTestRouterWithItems(t,
		[]model.User{testUser("seller1"), testUser("u2"), testUser("u3")},
		testItem("abc", "seller1", "bike"),
	)

	u2 := TokenFor(t, "u2")
	u3 := TokenFor(t, "u3")
	seller := TokenFor(t, "seller1")

	// u2 bids; the response is the item's full collection.
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/api/bid-for-item/abc", u2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bids := resp["data"].([]any)
	require.Len(t, bids, 1)
	require.Equal(t, "u2", bids[0].(map[string]any)["bidder_id"])
	bidID := bids[0].(map[string]any)["id"].(string)

	// A second bid by the same user is rejected.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/bid-for-item/abc", u2, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The seller cannot bid on their own item.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/bid-for-item/abc", seller, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// u3 joins; the collection grows.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/bid-for-item/abc", u3, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 2)

	// u3 cancels; the collection shrinks back.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/cancel-bid/abc", u3, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 1)

	// Only the seller may accept.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/accept-bid/"+bidID, u2, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/accept-bid/"+bidID, seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accepted := resp["data"].([]any)[0].(map[string]any)
	require.Equal(t, true, accepted["accepted"])

	// Accepting again conflicts.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/accept-bid/"+bidID, seller, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// The buyer reviews the seller: karma moves by 5*(rating-3).
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/review-user/"+bidID+"?review=5&reviewee_id=seller1", u2, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/get-user-karma/seller1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 10.0, resp["data"].(map[string]any)["karma"])

	// A second review of the same bid by the same reviewer conflicts.
	_, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/review-user/"+bidID+"?review=5&reviewee_id=seller1", u2, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// Accepted-bid queries see the exchange from both sides.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/api/get-accepted-bids-as-seller/seller1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 1)

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/api/get-accepted-bids-as-buyer/u2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 1)
}

// Listing creation and search through the HTTP API
func TestListingAndSearch(t *testing.T) {
	router := SetupTestRouterWithItems(t, []model.User{testUser("seller1")})
	seller := TokenFor(t, "seller1")

	// Anonymous creation is rejected.
	_, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/api/create-item", "", helpers.CreateItemRequest{
		Quality: "good", Name: "desk lamp", Description: "d", PhotoURLs: []string{"/uploads/a.jpg"},
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Create a batch of listings.
	for i := 0; i < 12; i++ {
		resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/api/create-item", seller, helpers.CreateItemRequest{
			Quality:     "good",
			Name:        fmt.Sprintf("desk lamp %02d", i),
			Description: "barely used",
			PhotoURLs:   []string{"/uploads/a.jpg"},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotEmpty(t, resp["data"].(map[string]any)["id"])
		time.Sleep(time.Millisecond) // distinct created_at for stable ordering
	}

	// Search caps page size at 10 and reports 2 pages.
	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/api/search-items-by-name?name=lamp&page=1&page_size=50", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page1 := resp["data"].([]any)
	require.Len(t, page1, 10)
	require.Equal(t, "desk lamp 11", page1[0].(map[string]any)["name"], "newest first")

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/api/get-number-of-pages?name=lamp&page_size=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2.0, resp["data"].(map[string]any)["total_pages"])

	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/api/search-items-by-name?name=lamp&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp["data"].([]any), 2)

	// A page past the end is empty, not an error.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/api/search-items-by-name?name=lamp&page=9", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, resp["data"])

	// Only the seller may edit.
	ids, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/api/get-all-items-ids", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	itemID := ids["data"].([]any)[0].(string)

	intruder := TokenFor(t, "u9")
	_, w = ExecuteRequestAndParse(t, router, http.MethodPut, "/api/edit-item/"+itemID, intruder, helpers.CreateItemRequest{
		Quality: "good", Name: "hijacked", Description: "d", PhotoURLs: []string{"/uploads/a.jpg"},
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

// User endpoints through the HTTP API
func TestUserEndpoints(t *testing.T) {
	router := SetupTestRouterWithItems(t, []model.User{testUser("u1"), testUser("u2")})

	// get-multiple-users preserves order and nils unknown ids.
	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/api/get-multiple-users?userids=u1,ghost,u2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := resp["data"].([]any)
	require.Len(t, users, 3)
	require.Equal(t, "name-u1", users[0].(map[string]any)["name"])
	require.Nil(t, users[1])
	require.Equal(t, "name-u2", users[2].(map[string]any)["name"])

	// Unknown single user is a 404 with the envelope's error field set.
	resp, w = ExecuteRequestAndParse(t, router, http.MethodGet, "/api/get-user/ghost", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotEmpty(t, resp["error"])

	// create-user registers a profile for the token's identity.
	token := TokenFor(t, "u3")
	resp, w = ExecuteRequestAndParse(t, router, http.MethodPost, "/api/create-user", token, helpers.CreateUserRequest{
		Email: "u3@campus.edu",
		Name:  "Third User",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "u3", resp["data"].(map[string]any)["id"])
}
