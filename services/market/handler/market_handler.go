package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"reuse-market/internal/auth"
	"reuse-market/internal/marketerrors"
	model "reuse-market/internal/models"
	"reuse-market/internal/storage"
	"reuse-market/services/market/helpers"
	"reuse-market/utils"

	"github.com/gin-gonic/gin"
)

type ListingServiceInterface interface {
	CreateItem(item model.Item) (model.Item, error)
	EditItem(itemID, callerID string, item model.Item) (model.Item, error)
	GetItem(itemID string) (model.Item, error)
	AllItems() ([]model.Item, error)
	AllItemIDs() ([]string, error)
	SearchItems(name string, page, pageSize int) ([]model.Item, error)
	NumberOfPages(name string, pageSize int) (int, error)
}

type BiddingServiceInterface interface {
	PlaceBid(itemID, bidderID string) ([]model.Bid, error)
	CancelBid(itemID, bidderID string) ([]model.Bid, error)
	BidsForItem(itemID string) ([]model.Bid, error)
	AcceptBid(ctx context.Context, bidID, callerID string) ([]model.Bid, error)
	ReviewUser(bidID, reviewerID, revieweeID string, rating int) error
	AcceptedBids(userID, side string) ([]model.Bid, error)
	CreateTransaction(itemID, buyerID, sellerID string) (model.Transaction, error)
}

type UserServiceInterface interface {
	CreateUser(userID, email, name, pfpURL string) (model.User, error)
	GetUser(userID string) (model.User, error)
	GetMultipleUsers(userIDs string) ([]*model.User, error)
	GetUserKarma(userID string) (float64, error)
}

type MarketHandler struct {
	listings ListingServiceInterface
	bidding  BiddingServiceInterface
	users    UserServiceInterface
	photos   storage.Store
}

func NewMarketHandler(listings ListingServiceInterface, bidding BiddingServiceInterface, users UserServiceInterface, photos storage.Store) *MarketHandler {
	return &MarketHandler{
		listings: listings,
		bidding:  bidding,
		users:    users,
		photos:   photos,
	}
}

// GetItemHandler handles GET /api/get-item/:item_id
func (h *MarketHandler) GetItemHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	item, err := h.listings.GetItem(itemID)
	if err != nil {
		helpers.RespondError(c, "GetItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "item retrieved successfully")
}

// SearchItemsHandler handles GET /api/search-items-by-name
func (h *MarketHandler) SearchItemsHandler(c *gin.Context) {
	name := c.Query("name")
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", 0)

	items, err := h.listings.SearchItems(name, page, pageSize)
	if err != nil {
		helpers.RespondError(c, "SearchItemsHandler", err, map[string]any{"name": name, "page": page})
		return
	}

	utils.JSONResponse(c, http.StatusOK, items, "items retrieved successfully")
	helpers.LogSuccess("SearchItemsHandler", "items retrieved successfully", map[string]any{
		"name":  name,
		"page":  page,
		"count": len(items),
	})
}

// NumberOfPagesHandler handles GET /api/get-number-of-pages
func (h *MarketHandler) NumberOfPagesHandler(c *gin.Context) {
	name := c.Query("name")
	pageSize := intQuery(c, "page_size", 0)

	pages, err := h.listings.NumberOfPages(name, pageSize)
	if err != nil {
		helpers.RespondError(c, "NumberOfPagesHandler", err, map[string]any{"name": name})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.PagesResponse{TotalPages: pages}, "total number of pages calculated successfully")
}

// AllItemsHandler handles GET /api/get-all-items
func (h *MarketHandler) AllItemsHandler(c *gin.Context) {
	items, err := h.listings.AllItems()
	if err != nil {
		helpers.RespondError(c, "AllItemsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, items, "items retrieved successfully")
}

// AllItemIDsHandler handles GET /api/get-all-items-ids
func (h *MarketHandler) AllItemIDsHandler(c *gin.Context) {
	ids, err := h.listings.AllItemIDs()
	if err != nil {
		helpers.RespondError(c, "AllItemIDsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, ids, "items retrieved successfully")
}

// CreateItemHandler handles POST /api/create-item. The seller identity
// comes from the bearer token, never the payload.
func (h *MarketHandler) CreateItemHandler(c *gin.Context) {
	sellerID, ok := auth.GetUserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, errUnauthenticated("unauthenticated users cannot make listings"), "authentication required")
		return
	}
	sellerEmail, _ := auth.GetUserEmail(c)

	var req helpers.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateItemHandler", err)
		return
	}

	item, err := h.listings.CreateItem(model.Item{
		SellerID:      sellerID,
		Name:          req.Name,
		Description:   req.Description,
		Quality:       req.Quality,
		Location:      req.Location,
		Tags:          req.Tags,
		PhotoURLs:     req.PhotoURLs,
		OtherURLs:     req.OtherURLs,
		CanSelfPickup: req.CanSelfPickup,
		Email:         sellerEmail,
		Price:         req.Price,
	})
	if err != nil {
		helpers.RespondError(c, "CreateItemHandler", err, map[string]any{"seller_id": sellerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, item, "item created successfully")
	helpers.LogSuccess("CreateItemHandler", "item created successfully", map[string]any{
		"item_id":   item.ItemID,
		"seller_id": sellerID,
	})
}

// EditItemHandler handles PUT /api/edit-item/:item_id
func (h *MarketHandler) EditItemHandler(c *gin.Context) {
	callerID, ok := auth.GetUserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, errUnauthenticated("unauthenticated users cannot edit listings"), "authentication required")
		return
	}

	var req helpers.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "EditItemHandler", err)
		return
	}

	itemID := c.Param("item_id")
	email, _ := auth.GetUserEmail(c)
	item, err := h.listings.EditItem(itemID, callerID, model.Item{
		Name:          req.Name,
		Description:   req.Description,
		Quality:       req.Quality,
		Location:      req.Location,
		Tags:          req.Tags,
		PhotoURLs:     req.PhotoURLs,
		OtherURLs:     req.OtherURLs,
		CanSelfPickup: req.CanSelfPickup,
		Email:         email,
		Price:         req.Price,
	})
	if err != nil {
		helpers.RespondError(c, "EditItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, item, "item updated successfully")
}

// GetUserHandler handles GET /api/get-user/:user_id
func (h *MarketHandler) GetUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	user, err := h.users.GetUser(userID)
	if err != nil {
		helpers.RespondError(c, "GetUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "user retrieved successfully")
}

// GetMultipleUsersHandler handles GET /api/get-multiple-users?userids=a,b,c
func (h *MarketHandler) GetMultipleUsersHandler(c *gin.Context) {
	users, err := h.users.GetMultipleUsers(c.Query("userids"))
	if err != nil {
		helpers.RespondError(c, "GetMultipleUsersHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, users, "multiple users found")
}

// GetUserKarmaHandler handles POST /api/get-user-karma/:user_id
func (h *MarketHandler) GetUserKarmaHandler(c *gin.Context) {
	userID := c.Param("user_id")
	karma, err := h.users.GetUserKarma(userID)
	if err != nil {
		helpers.RespondError(c, "GetUserKarmaHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"karma": karma}, "user karma retrieved successfully")
}

// CreateUserHandler handles POST /api/create-user
func (h *MarketHandler) CreateUserHandler(c *gin.Context) {
	var req helpers.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateUserHandler", err)
		return
	}

	userID, _ := auth.GetUserID(c)
	user, err := h.users.CreateUser(userID, req.Email, req.Name, req.PfpURL)
	if err != nil {
		helpers.RespondError(c, "CreateUserHandler", err, map[string]any{"email": req.Email})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user, "user created successfully")
}

// BidForItemHandler handles POST /api/bid-for-item/:item_id. The response
// data is the item's full bid collection after the write.
func (h *MarketHandler) BidForItemHandler(c *gin.Context) {
	bidderID, ok := auth.GetUserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, errUnauthenticated("you can't bid for items without registering"), "authentication required")
		return
	}

	itemID := c.Param("item_id")
	bids, err := h.bidding.PlaceBid(itemID, bidderID)
	if err != nil {
		helpers.RespondError(c, "BidForItemHandler", err, map[string]any{"item_id": itemID, "bidder_id": bidderID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bid created successfully")
	helpers.LogSuccess("BidForItemHandler", "bid created successfully", map[string]any{
		"item_id":   itemID,
		"bidder_id": bidderID,
		"count":     len(bids),
	})
}

// CancelBidHandler handles POST /api/cancel-bid/:item_id
func (h *MarketHandler) CancelBidHandler(c *gin.Context) {
	bidderID, ok := auth.GetUserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, errUnauthenticated("you can't cancel bids without registering"), "authentication required")
		return
	}

	itemID := c.Param("item_id")
	bids, err := h.bidding.CancelBid(itemID, bidderID)
	if err != nil {
		helpers.RespondError(c, "CancelBidHandler", err, map[string]any{"item_id": itemID, "bidder_id": bidderID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bid deleted successfully")
}

// GetBidsForItemHandler handles GET /api/get-bids-for-item/:item_id
func (h *MarketHandler) GetBidsForItemHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	bids, err := h.bidding.BidsForItem(itemID)
	if err != nil {
		helpers.RespondError(c, "GetBidsForItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
}

// AcceptBidHandler handles POST /api/accept-bid/:bid_id. Only the item's
// seller may accept, and the response data is the full refreshed bid
// collection so clients re-sync every bid's state.
func (h *MarketHandler) AcceptBidHandler(c *gin.Context) {
	callerID, ok := auth.GetUserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, errUnauthenticated("you can't accept bids without registering"), "authentication required")
		return
	}

	bidID := c.Param("bid_id")
	bids, err := h.bidding.AcceptBid(c.Request.Context(), bidID, callerID)
	if err != nil {
		helpers.RespondError(c, "AcceptBidHandler", err, map[string]any{"bid_id": bidID, "caller_id": callerID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bid accepted successfully")
	helpers.LogSuccess("AcceptBidHandler", "bid accepted successfully", map[string]any{
		"bid_id":    bidID,
		"caller_id": callerID,
	})
}

// ReviewUserHandler handles POST /api/review-user/:bid_id?review=4&reviewee_id=...
func (h *MarketHandler) ReviewUserHandler(c *gin.Context) {
	reviewerID, ok := auth.GetUserID(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, errUnauthenticated("you can't review users without registering"), "authentication required")
		return
	}

	bidID := c.Param("bid_id")
	revieweeID := c.Query("reviewee_id")
	rating, err := strconv.Atoi(c.Query("review"))
	if err != nil {
		helpers.HandleBindError(c, "ReviewUserHandler", err)
		return
	}

	if err := h.bidding.ReviewUser(bidID, reviewerID, revieweeID, rating); err != nil {
		helpers.RespondError(c, "ReviewUserHandler", err, map[string]any{"bid_id": bidID, "reviewer_id": reviewerID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "user karma adjusted successfully")
}

// AcceptedBidsAsSellerHandler handles GET /api/get-accepted-bids-as-seller/:user_id
func (h *MarketHandler) AcceptedBidsAsSellerHandler(c *gin.Context) {
	h.acceptedBids(c, "seller")
}

// AcceptedBidsAsBuyerHandler handles GET /api/get-accepted-bids-as-buyer/:user_id
func (h *MarketHandler) AcceptedBidsAsBuyerHandler(c *gin.Context) {
	h.acceptedBids(c, "buyer")
}

func (h *MarketHandler) acceptedBids(c *gin.Context, side string) {
	userID := c.Param("user_id")
	bids, err := h.bidding.AcceptedBids(userID, side)
	if err != nil {
		helpers.RespondError(c, "AcceptedBidsHandler", err, map[string]any{"user_id": userID, "side": side})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bids, "accepted bids retrieved successfully")
}

// CreateTransactionHandler handles POST /api/create-new-transaction
func (h *MarketHandler) CreateTransactionHandler(c *gin.Context) {
	var req helpers.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateTransactionHandler", err)
		return
	}

	txn, err := h.bidding.CreateTransaction(req.ItemID, req.BuyerID, req.SellerID)
	if err != nil {
		helpers.RespondError(c, "CreateTransactionHandler", err, map[string]any{"item_id": req.ItemID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, txn, "transaction created successfully")
}

// UploadPhotoHandler handles POST /api/upload-photo (multipart form,
// field "photo"). Photos upload before the listing referencing them.
func (h *MarketHandler) UploadPhotoHandler(c *gin.Context) {
	if _, ok := auth.GetUserID(c); !ok {
		utils.JSONError(c, http.StatusUnauthorized, errUnauthenticated("unauthenticated users cannot upload photos"), "authentication required")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		helpers.HandleBindError(c, "UploadPhotoHandler", err)
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !storage.AllowedContentType(contentType) {
		utils.JSONError(c, http.StatusBadRequest, storage.ErrUnsupportedType, "photos must be JPEG or PNG")
		return
	}

	src, err := file.Open()
	if err != nil {
		helpers.RespondError(c, "UploadPhotoHandler", err, nil)
		return
	}
	defer src.Close()

	name := utils.GenerateID() + extensionFor(contentType)
	url, err := h.photos.Save(name, contentType, src)
	if err != nil {
		helpers.RespondError(c, "UploadPhotoHandler", err, map[string]any{"name": name})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.UploadPhotoResponse{Name: name, URL: url}, "photo uploaded successfully")
}

// DeletePhotoHandler handles POST /api/delete-photo/:name
func (h *MarketHandler) DeletePhotoHandler(c *gin.Context) {
	if _, ok := auth.GetUserID(c); !ok {
		utils.JSONError(c, http.StatusUnauthorized, errUnauthenticated("unauthenticated users cannot delete photos"), "authentication required")
		return
	}

	if err := h.photos.Delete(c.Param("name")); err != nil {
		helpers.RespondError(c, "DeletePhotoHandler", err, map[string]any{"name": c.Param("name")})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "photo deleted successfully")
}

func errUnauthenticated(reason string) error {
	return fmt.Errorf("%s: %w", reason, marketerrors.ErrUnauthorized)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func extensionFor(contentType string) string {
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}
