// Package ginserver exposes the engine's operations over HTTP.
package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentflow/internal/infra/config"
	"rentflow/internal/infra/obs"
)

type UserHTTP interface {
	Create(c *gin.Context)
}

type ProductHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Remove(c *gin.Context)
}

type RentalHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Complete(c *gin.Context)
	Remove(c *gin.Context)
}

type ReviewHTTP interface {
	Create(c *gin.Context)
}

type PaymentHTTP interface {
	Create(c *gin.Context)
}

type Handlers struct {
	User    UserHTTP
	Product ProductHTTP
	Rental  RentalHTTP
	Review  ReviewHTTP
	Payment PaymentHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.User != nil {
		api.POST("/users", h.User.Create)
	}
	if h.Product != nil {
		api.POST("/products", h.Product.Create)
		api.GET("/products/:id", h.Product.Get)
		api.DELETE("/products/:id", h.Product.Remove)
	}
	if h.Rental != nil {
		api.POST("/rentals", h.Rental.Create)
		api.GET("/rentals", h.Rental.List)
		api.GET("/rentals/:id", h.Rental.Get)
		api.POST("/rentals/:id/complete", h.Rental.Complete)
		api.DELETE("/rentals/:id", h.Rental.Remove)
	}
	if h.Review != nil {
		api.POST("/reviews", h.Review.Create)
	}
	if h.Payment != nil {
		api.POST("/payments", h.Payment.Create)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
