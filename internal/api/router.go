package api

import (
	"budget_ledger/internal/middleware" // Session, admin and error middleware
	"budget_ledger/internal/service"    // Auth Controller and Ledger Query Service
	"budget_ledger/internal/store"      // Stores for admin views

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// App is the application context built once at startup and handed to every handler
type App struct {
	Auth         *service.AuthService   // Auth Controller
	Ledger       *service.LedgerService // Ledger Query Service
	Users        *store.UserStore       // Admin users view
	Entries      *store.LedgerStore     // Admin entries view
	Redis        *redis.Client          // Admin listing cache, may be nil
	UploadDir    string                 // Served under /static/profile_pics
	SecureCookie bool                   // Send the session cookie over HTTPS only
}

// NewRouter registers every route of the application
func NewRouter(app *App) *gin.Engine {
	r := gin.New() // Gin router instance
	r.Use(middleware.RequestLogger(), middleware.Recovery())
	r.NoRoute(middleware.NotFound()) // Generic 404 body

	if app.UploadDir != "" {
		r.Static(photoURLPrefix, app.UploadDir) // Profile thumbnails
	}

	// Anonymous routes
	r.POST("/register", RegisterHandler(app.Auth))                  // Registration endpoint
	r.POST("/login", LoginHandler(app.Auth, app.SecureCookie))      // Login endpoint
	r.POST("/reset_password", ResetRequestHandler(app.Auth))        // Reset request endpoint
	r.POST("/reset_password/:token", ResetConfirmHandler(app.Auth)) // Reset confirm endpoint

	// Session routes
	authed := r.Group("")
	authed.Use(middleware.SessionAuthMiddleware(app.Auth))
	authed.POST("/logout", LogoutHandler(app.Auth, app.SecureCookie)) // Logout endpoint
	authed.GET("/entries", ListEntriesHandler(app.Ledger))            // Ledger list endpoint
	authed.POST("/entries", CreateEntryHandler(app.Ledger))           // Entry creation endpoint
	authed.GET("/account", GetAccountHandler())                       // Profile endpoint
	authed.POST("/account", UpdateAccountHandler(app.Auth))           // Profile update endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.SessionAuthMiddleware(app.Auth), middleware.AdminOnlyMiddleware())
	adminGroup.GET("/users", ListUsersHandler(app.Users, app.Redis))            // List users endpoint
	adminGroup.GET("/entries", ListEntriesAdminHandler(app.Entries, app.Redis)) // List entries endpoint

	return r
}
