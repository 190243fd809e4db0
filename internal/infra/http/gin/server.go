package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"villacove/internal/infra/config"
	"villacove/internal/infra/obs"
)

type SiteHTTP interface {
	Catalog(c *gin.Context)
	Detail(c *gin.Context)
	Calendar(c *gin.Context)
	CheckAvailability(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	GetByReference(c *gin.Context)
}

type AdminHTTP interface {
	ListVillas(c *gin.Context)
	CreateVilla(c *gin.Context)
	UpdateVilla(c *gin.Context)
	PublishVilla(c *gin.Context)
	UnpublishVilla(c *gin.Context)
	UploadPhoto(c *gin.Context)
	BlockDates(c *gin.Context)
	UnblockDates(c *gin.Context)
	ListBookings(c *gin.Context)
	CancelBooking(c *gin.Context)
	OccupancyReport(c *gin.Context)
}

type AuthHTTP interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type Handlers struct {
	Site    SiteHTTP
	Booking BookingHTTP
	Admin   AdminHTTP
	Auth    AuthHTTP

	// RequireAdmin guards the back-office group.
	RequireAdmin gin.HandlerFunc
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
	if h.Auth != nil {
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
	}
	if h.Site != nil {
		api.GET("/villas", h.Site.Catalog)
		api.GET("/villas/:slug", h.Site.Detail)
		api.GET("/villas/:slug/calendar", h.Site.Calendar)
		api.GET("/villas/:slug/availability", h.Site.CheckAvailability)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:reference", h.Booking.GetByReference)
	}
	if h.Admin != nil {
		admin := api.Group("/admin")
		if h.RequireAdmin != nil {
			admin.Use(h.RequireAdmin)
		}
		admin.GET("/villas", h.Admin.ListVillas)
		admin.POST("/villas", h.Admin.CreateVilla)
		admin.PUT("/villas/:id", h.Admin.UpdateVilla)
		admin.POST("/villas/:id/publish", h.Admin.PublishVilla)
		admin.POST("/villas/:id/unpublish", h.Admin.UnpublishVilla)
		admin.POST("/villas/:id/photos", h.Admin.UploadPhoto)
		admin.POST("/villas/:id/blocks", h.Admin.BlockDates)
		admin.DELETE("/villas/:id/blocks", h.Admin.UnblockDates)
		admin.GET("/villas/:id/bookings", h.Admin.ListBookings)
		admin.GET("/villas/:id/occupancy", h.Admin.OccupancyReport)
		admin.POST("/bookings/:id/cancel", h.Admin.CancelBooking)
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
