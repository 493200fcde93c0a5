package helpers

// Request/Response DTOs
type CreateItemRequest struct {
	Quality       string   `json:"quality" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Location      string   `json:"location"`
	Tags          []string `json:"tags"`
	PhotoURLs     []string `json:"photo_urls" binding:"required"`
	OtherURLs     []string `json:"other_urls"`
	CanSelfPickup bool     `json:"can_self_pickup"`
	Price         float64  `json:"price"`
}

type CreateUserRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Name   string `json:"name"`
	PfpURL string `json:"pfp_url"`
}

type CreateTransactionRequest struct {
	BuyerID  string `json:"buyer_id" binding:"required"`
	SellerID string `json:"seller_id" binding:"required"`
	ItemID   string `json:"item_id" binding:"required"`
}

type PagesResponse struct {
	TotalPages int `json:"total_pages"`
}

type UploadPhotoResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
