package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
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
)

// SetupTestRouter initializes the router with in-memory repository for integration testing.
func SetupTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryRepo) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	auth.InitJWT("integration-test-secret")

	repo := repository.NewMemoryRepo()
	photos, err := storage.NewDiskStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("failed to create photo store: %v", err)
	}

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
	return router, repo
}

// SetupTestRouterWithItems initializes the router and seeds users and items.
func SetupTestRouterWithItems(t *testing.T, users []model.User, items ...model.Item) *gin.Engine {
	t.Helper()

	router, repo := SetupTestRouter(t)
	for _, user := range users {
		if err := repo.CreateUser(user); err != nil {
			t.Fatalf("failed to seed user %s: %v", user.UserID, err)
		}
	}
	for _, item := range items {
		if err := repo.CreateItem(item); err != nil {
			t.Fatalf("failed to seed item %s: %v", item.ItemID, err)
		}
	}
	return router
}

// TokenFor mints a bearer token the test router accepts.
func TokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, userID+"@campus.edu")
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, token, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

func testUser(id string) model.User {
	return model.User{
		UserID:    id,
		Name:      "name-" + id,
		Email:     id + "@campus.edu",
		CreatedAt: time.Now().UTC(),
	}
}

func testItem(id, sellerID, name string) model.Item {
	return model.Item{
		ItemID:      id,
		SellerID:    sellerID,
		Name:        name,
		Description: "description for " + name,
		Quality:     "good",
		PhotoURLs:   []string{"/uploads/" + id + ".jpg"},
		CreatedAt:   time.Now().UTC(),
	}
}
