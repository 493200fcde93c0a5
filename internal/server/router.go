package server

import (
	"time"

	"reuse-market/internal/auth"
	"reuse-market/internal/config"
	market "reuse-market/internal/marketservice"
	"reuse-market/internal/storage"
	handler "reuse-market/services/market/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(cfg *config.Config, listings *market.ListingService, bidding *market.BiddingService, users *market.UserService, photos *storage.DiskStore) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(MetricsMiddleware)

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	router.Use(cors.New(corsCfg))

	if !cfg.IsDevelopment() {
		router.Use(RateLimitMiddleware(rate.Every(time.Second/20), 20))
	}

	marketHandler := handler.NewMarketHandler(listings, bidding, users, photos)

	api := router.Group("/api")
	api.Use(auth.Middleware())
	{
		api.GET("/get-item/:item_id", marketHandler.GetItemHandler)
		api.GET("/search-items-by-name", marketHandler.SearchItemsHandler)
		api.GET("/get-number-of-pages", marketHandler.NumberOfPagesHandler)
		api.GET("/get-all-items", marketHandler.AllItemsHandler)
		api.GET("/get-all-items-ids", marketHandler.AllItemIDsHandler)
		api.GET("/get-bids-for-item/:item_id", marketHandler.GetBidsForItemHandler)
		api.GET("/get-user/:user_id", marketHandler.GetUserHandler)
		api.GET("/get-multiple-users", marketHandler.GetMultipleUsersHandler)
		api.GET("/get-accepted-bids-as-seller/:user_id", marketHandler.AcceptedBidsAsSellerHandler)
		api.GET("/get-accepted-bids-as-buyer/:user_id", marketHandler.AcceptedBidsAsBuyerHandler)
		api.POST("/get-user-karma/:user_id", marketHandler.GetUserKarmaHandler)
		api.POST("/create-user", marketHandler.CreateUserHandler)

		writes := api.Group("")
		writes.Use(auth.RequireUser())
		{
			writes.POST("/create-item", marketHandler.CreateItemHandler)
			writes.PUT("/edit-item/:item_id", marketHandler.EditItemHandler)
			writes.POST("/bid-for-item/:item_id", marketHandler.BidForItemHandler)
			writes.POST("/cancel-bid/:item_id", marketHandler.CancelBidHandler)
			writes.POST("/accept-bid/:bid_id", marketHandler.AcceptBidHandler)
			writes.POST("/review-user/:bid_id", marketHandler.ReviewUserHandler)
			writes.POST("/create-new-transaction", marketHandler.CreateTransactionHandler)
			writes.POST("/upload-photo", marketHandler.UploadPhotoHandler)
			writes.POST("/delete-photo/:name", marketHandler.DeletePhotoHandler)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", photos.Dir())

	return router
}
