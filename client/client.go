// Package client is a typed Go consumer of the marketplace HTTP API. It
// decodes the server's response envelope and classifies failures into
// discrete error kinds so callers never match on message text.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	model "reuse-market/internal/models"
	"reuse-market/services/market/helpers"
)

// ErrorKind classifies an API failure.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindValidation   ErrorKind = "validation"
	KindTransport    ErrorKind = "transport"
	KindServer       ErrorKind = "server"
)

// APIError is the error type returned by every Client method.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
}

// IsNotFound reports whether err is an APIError of kind not_found.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Kind == KindNotFound
}

// Client wraps the /api endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// New creates a Client for the given server. The session supplies the
// bearer token; a nil session means all calls go out anonymous.
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		session: session,
	}
}

// envelope mirrors the server's response shape.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Err     string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.session != nil && c.session.Token() != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Kind: KindTransport, Status: resp.StatusCode, Message: "malformed response body"}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		message := env.Err
		if message == "" {
			message = env.Message
		}
		return &APIError{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &APIError{Kind: KindTransport, Status: resp.StatusCode, Message: "malformed response data"}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &APIError{Kind: KindTransport, Message: err.Error()}
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindValidation
	}
}

// GetItem fetches one listing.
func (c *Client) GetItem(ctx context.Context, itemID string) (model.Item, error) {
	var item model.Item
	err := c.get(ctx, "/api/get-item/"+url.PathEscape(itemID), &item)
	return item, err
}

// SearchItems fetches one page of listings matching name, newest first.
func (c *Client) SearchItems(ctx context.Context, name string, page, pageSize int) ([]model.Item, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	items := []model.Item{}
	err := c.get(ctx, "/api/search-items-by-name?"+q.Encode(), &items)
	return items, err
}

// NumberOfPages fetches the page count for a search.
func (c *Client) NumberOfPages(ctx context.Context, name string, pageSize int) (int, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("page_size", strconv.Itoa(pageSize))

	var pages helpers.PagesResponse
	err := c.get(ctx, "/api/get-number-of-pages?"+q.Encode(), &pages)
	return pages.TotalPages, err
}

// AllItemIDs fetches every listing id.
func (c *Client) AllItemIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := c.get(ctx, "/api/get-all-items-ids", &ids)
	return ids, err
}

// GetUser fetches one user profile.
func (c *Client) GetUser(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	err := c.get(ctx, "/api/get-user/"+url.PathEscape(userID), &user)
	return user, err
}

// GetMultipleUsers fetches profiles for the given ids in one call. The
// result preserves request order; unknown ids come back nil.
func (c *Client) GetMultipleUsers(ctx context.Context, userIDs []string) ([]*model.User, error) {
	q := url.Values{}
	q.Set("userids", strings.Join(userIDs, ","))

	users := []*model.User{}
	err := c.get(ctx, "/api/get-multiple-users?"+q.Encode(), &users)
	return users, err
}

// CreateUser registers a profile for the signed-in identity.
func (c *Client) CreateUser(ctx context.Context, email, name, pfpURL string) (model.User, error) {
	var user model.User
	err := c.postJSON(ctx, http.MethodPost, "/api/create-user", helpers.CreateUserRequest{
		Email:  email,
		Name:   name,
		PfpURL: pfpURL,
	}, &user)
	return user, err
}

// CreateItem posts a new listing and returns it with its server id.
func (c *Client) CreateItem(ctx context.Context, req helpers.CreateItemRequest) (model.Item, error) {
	var item model.Item
	err := c.postJSON(ctx, http.MethodPost, "/api/create-item", req, &item)
	return item, err
}

// EditItem overwrites a listing's mutable fields.
func (c *Client) EditItem(ctx context.Context, itemID string, req helpers.CreateItemRequest) (model.Item, error) {
	var item model.Item
	err := c.postJSON(ctx, http.MethodPut, "/api/edit-item/"+url.PathEscape(itemID), req, &item)
	return item, err
}

// GetBidsForItem fetches an item's bid collection.
func (c *Client) GetBidsForItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	bids := []model.Bid{}
	err := c.get(ctx, "/api/get-bids-for-item/"+url.PathEscape(itemID), &bids)
	return bids, err
}

// BidForItem places the viewer's bid and returns the item's full bid
// collection after the write.
func (c *Client) BidForItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	bids := []model.Bid{}
	err := c.postJSON(ctx, http.MethodPost, "/api/bid-for-item/"+url.PathEscape(itemID), nil, &bids)
	return bids, err
}

// CancelBid withdraws the viewer's bid and returns the remaining
// collection.
func (c *Client) CancelBid(ctx context.Context, itemID string) ([]model.Bid, error) {
	bids := []model.Bid{}
	err := c.postJSON(ctx, http.MethodPost, "/api/cancel-bid/"+url.PathEscape(itemID), nil, &bids)
	return bids, err
}

// AcceptBid marks a bid accepted and returns the item's refreshed bid
// collection.
func (c *Client) AcceptBid(ctx context.Context, bidID string) ([]model.Bid, error) {
	bids := []model.Bid{}
	err := c.postJSON(ctx, http.MethodPost, "/api/accept-bid/"+url.PathEscape(bidID), nil, &bids)
	return bids, err
}

// ReviewUser submits a 1..5 rating against the counterparty of an
// accepted bid.
func (c *Client) ReviewUser(ctx context.Context, bidID, revieweeID string, rating int) error {
	q := url.Values{}
	q.Set("review", strconv.Itoa(rating))
	q.Set("reviewee_id", revieweeID)
	return c.postJSON(ctx, http.MethodPost, "/api/review-user/"+url.PathEscape(bidID)+"?"+q.Encode(), nil, nil)
}

// AcceptedBidsAsSeller fetches accepted bids on the user's listings.
func (c *Client) AcceptedBidsAsSeller(ctx context.Context, userID string) ([]model.Bid, error) {
	bids := []model.Bid{}
	err := c.get(ctx, "/api/get-accepted-bids-as-seller/"+url.PathEscape(userID), &bids)
	return bids, err
}

// AcceptedBidsAsBuyer fetches the user's accepted bids on others' listings.
func (c *Client) AcceptedBidsAsBuyer(ctx context.Context, userID string) ([]model.Bid, error) {
	bids := []model.Bid{}
	err := c.get(ctx, "/api/get-accepted-bids-as-buyer/"+url.PathEscape(userID), &bids)
	return bids, err
}

// UploadPhoto streams a photo to the server and returns its stored name
// and public URL.
func (c *Client) UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (helpers.UploadPhotoResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return helpers.UploadPhotoResponse{}, &APIError{Kind: KindTransport, Message: err.Error()}
	}
	if _, err := io.Copy(part, r); err != nil {
		return helpers.UploadPhotoResponse{}, &APIError{Kind: KindTransport, Message: err.Error()}
	}
	if err := mw.Close(); err != nil {
		return helpers.UploadPhotoResponse{}, &APIError{Kind: KindTransport, Message: err.Error()}
	}

	var uploaded helpers.UploadPhotoResponse
	err = c.do(ctx, http.MethodPost, "/api/upload-photo", &buf, mw.FormDataContentType(), &uploaded)
	return uploaded, err
}

// DeletePhoto removes an uploaded photo by its stored name.
func (c *Client) DeletePhoto(ctx context.Context, name string) error {
	return c.postJSON(ctx, http.MethodPost, "/api/delete-photo/"+url.PathEscape(name), nil, nil)
}
