package main

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"re-view.backend/internal/interfaces/http/handlers"
	"re-view.backend/internal/interfaces/http/middleware"
	"re-view.backend/pkg/metrics"
)

const (
	serviceName    = "re-view-backend"
	serviceVersion = "1.0.0"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	brandHandler   *handlers.BrandHandler
	productHandler *handlers.ProductHandler
	reviewHandler  *handlers.ReviewHandler
	idempotency    gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine, allowed []string) {
	wildcard := slices.Contains(allowed, "*")
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return wildcard || slices.Contains(allowed, origin)
		},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization",
			middleware.SessionHeader, middleware.RequestIDHeader, middleware.IdempotencyHeader,
		},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, reg *metrics.Registry) {
	r.GET("/metrics", gin.WrapH(reg.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	idem := d.idempotency
	if idem == nil {
		idem = func(c *gin.Context) { c.Next() }
	}

	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", d.authHandler.Signup)
			auth.POST("/signin", d.authHandler.Signin)
			auth.POST("/signout", d.authHandler.Signout)
			auth.POST("/refresh", d.authHandler.RefreshToken)
		}

		users := v1.Group("/users")
		{
			users.GET("/me", middleware.RequireAuth(), d.userHandler.GetMe)
			users.GET("/search", middleware.RequireAuth(), d.userHandler.SearchUsers)
			users.GET("/:id", d.userHandler.GetUser)
			users.PATCH("/:id", d.userHandler.UpdateUser)
			users.GET("/:id/brands", d.brandHandler.ListUserBrands)
			users.GET("/:id/products", d.productHandler.ListUserProducts)
			users.GET("/:id/reviews", d.reviewHandler.ListUserReviews)
		}

		brands := v1.Group("/brands")
		{
			brands.GET("", d.brandHandler.ListBrands)
			brands.POST("", idem, d.brandHandler.CreateBrand)
			brands.GET("/search", d.brandHandler.SearchBrands)
			brands.GET("/:id", d.brandHandler.GetBrand)
			brands.POST("/:id/verify", d.brandHandler.VerifyBrand)
			brands.GET("/:id/products", d.productHandler.ListBrandProducts)
			brands.GET("/:id/reviews", d.reviewHandler.ListBrandReviews)
			brands.GET("/:id/rating", d.reviewHandler.BrandRating)
		}

		products := v1.Group("/products")
		{
			products.GET("", d.productHandler.ListProducts)
			products.POST("", idem, d.productHandler.CreateProduct)
			products.GET("/search", d.productHandler.SearchProducts)
			products.GET("/:id", d.productHandler.GetProduct)
			products.PATCH("/:id", d.productHandler.UpdateProduct)
			products.DELETE("/:id", d.productHandler.DeleteProduct)
			products.POST("/:id/merge", idem, d.productHandler.MergeProducts)
			products.GET("/:id/reviews", d.reviewHandler.ListProductReviews)
			products.GET("/:id/rating", d.reviewHandler.ProductRating)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.POST("", idem, d.reviewHandler.PostReview)
			reviews.GET("/:id", d.reviewHandler.GetReview)
			reviews.DELETE("/:id", d.reviewHandler.DeleteReview)
			reviews.PATCH("/:id/status", d.reviewHandler.ChangeReviewStatus)
		}
	}
}
