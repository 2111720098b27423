package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jobsy-backend/controllers/applications"
	"jobsy-backend/controllers/authentication"
	"jobsy-backend/controllers/httpCors"
	"jobsy-backend/controllers/jobs"
	"jobsy-backend/services"
)

// Dependencies is everything the HTTP layer needs. Nothing is read from
// package globals.
type Dependencies struct {
	DB       *gorm.DB
	Users    *services.UserStore
	Issuer   *services.SessionIssuer
	Catalog  *services.Catalog
	Ledger   *services.Ledger
	Importer *services.Importer
	Sessions sessions.Store

	CORSOrigins []string
	Logger      zerolog.Logger
}

// NewHandler returns the router behind the CORS layer.
func NewHandler(d Dependencies) http.Handler {
	return httpCors.Wrap(NewRouter(d), d.CORSOrigins)
}

func NewRouter(d Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(RequestID(), AccessLog(d.Logger), gin.Recovery())

	gate := authentication.NewGate(d.Issuer, d.Sessions, d.Logger)
	auth := authentication.NewHandler(d.Issuer, d.Users, d.Sessions, d.Logger)
	jobHandler := jobs.NewHandler(d.Catalog, d.Ledger, d.Importer, d.Logger)
	appHandler := applications.NewHandler(d.Ledger, d.Logger)

	r.GET("/", health(d.DB, "message", "Jobsy Backend API is running!"))

	api := r.Group("/api")
	api.GET("/test", health(d.DB, "status", "OK"))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", auth.Signup)
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/logout", auth.Logout)
	}

	jobGroup := api.Group("/jobs")
	{
		jobGroup.GET("", jobHandler.List)
		jobGroup.GET("/:id", jobHandler.Get)
		jobGroup.POST("", gate.AdminOnly(), jobHandler.Create)
		jobGroup.PUT("/:id", gate.AdminOnly(), jobHandler.Update)
		jobGroup.DELETE("/:id", gate.AdminOnly(), jobHandler.Delete)
		jobGroup.POST("/import", gate.AdminOnly(), jobHandler.Import)
		jobGroup.POST("/:id/apply", gate.Authenticated(), jobHandler.Apply)
	}

	appGroup := api.Group("/applications")
	{
		appGroup.GET("/my", gate.Authenticated(), appHandler.Mine)
		appGroup.GET("", gate.AdminOnly(), appHandler.All)
		appGroup.PATCH("/:id/status", gate.AdminOnly(), appHandler.SetStatus)
		appGroup.DELETE("/:id", gate.AdminOnly(), appHandler.Delete)
	}

	profile := api.Group("/profile", gate.Authenticated())
	{
		profile.GET("", auth.GetProfile)
		profile.PUT("", auth.UpdateProfile)
		profile.PUT("/password", auth.ChangePassword)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	return r
}

// health reports whether the store answers a ping.
func health(db *gorm.DB, key, text string) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := "Disconnected"
		if pingDB(c.Request.Context(), db) == nil {
			state = "Connected"
		}
		c.JSON(http.StatusOK, gin.H{
			key:         text,
			"database":  state,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
