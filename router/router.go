package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/billing"
	"github.com/yeremiapane/billiard-pos/cache"
	"github.com/yeremiapane/billiard-pos/config"
	"github.com/yeremiapane/billiard-pos/controllers"
	"github.com/yeremiapane/billiard-pos/floor"
	"github.com/yeremiapane/billiard-pos/middlewares"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/queue"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

// Deps are the process-wide collaborators the HTTP layer is built on.
// Redis and Publisher are optional.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Hub       *floor.Hub
	Tokens    *utils.TokenManager
	Redis     *redis.Client
	Publisher queue.Publisher
	// Now overrides the service clock in tests.
	Now func() time.Time
}

var managers = []string{models.RoleAdmin, models.RoleManager}

// Roles is the route-level access table. Routes not listed are open to any
// signed-in user.
var Roles = middlewares.RouteRoles{
	"POST /tables":             managers,
	"PATCH /tables/:id":        managers,
	"POST /categories":         managers,
	"POST /products":           managers,
	"PATCH /products/:id":      managers,
	"POST /products/:id/stock": managers,
	"GET /users":               {models.RoleAdmin},
	"* /admin/":                managers,
}

func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	if deps.Hub == nil {
		deps.Hub = floor.NewHub()
	}
	if deps.Tokens == nil {
		deps.Tokens = utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders(cfg.CookieSecure))
	r.Use(middlewares.CORSMiddlewares(cfg.CORSAllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())
	if cfg.RateLimitPerSecond > 0 {
		global := middlewares.NewRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitPerSecond*2)
		r.Use(global.RateLimit())
	}

	opts := services.Options{
		Rates:                 cfg.Rates(),
		Location:              cfg.Location(),
		Tracker:               billing.NewTracker(cfg.PackageWarningSeconds),
		Hub:                   deps.Hub,
		Publisher:             deps.Publisher,
		Now:                   deps.Now,
		NoShowGraceMinutes:    cfg.NoShowGraceMinutes,
		UpcomingWindowMinutes: cfg.UpcomingWindowMinutes,
	}
	transactionSvc := services.NewTransactionService(deps.DB, opts)
	tableSvc := services.NewTableService(deps.DB, transactionSvc, opts)
	reservationSvc := services.NewReservationService(deps.DB, tableSvc, opts)
	shiftSvc := services.NewShiftService(deps.DB, opts)
	memberSvc := services.NewMemberService(deps.DB, opts)
	analyticsSvc := services.NewAnalyticsService(deps.DB, opts)

	var catalog *cache.Catalog
	if deps.Redis != nil {
		catalog = cache.NewCatalog(deps.Redis, cfg.CacheTTL)
	}

	userCtrl := controllers.NewUserController(deps.DB, deps.Tokens, cfg.CookieName, cfg.CookieSecure)
	tableCtrl := controllers.NewTableController(tableSvc)
	reservationCtrl := controllers.NewReservationController(reservationSvc)
	transactionCtrl := controllers.NewTransactionController(transactionSvc)
	memberCtrl := controllers.NewMemberController(memberSvc)
	productCtrl := controllers.NewProductController(deps.DB, catalog)
	shiftCtrl := controllers.NewShiftController(shiftSvc)
	adminCtrl := controllers.NewAdminController(deps.DB, analyticsSvc)
	floorCtrl := controllers.NewFloorController(deps.Hub, cfg.CORSAllowedOrigins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	strict := middlewares.NewStrictRateLimiter()
	public := r.Group("/")
	public.Use(strict.RateLimit())
	{
		public.POST("/login", userCtrl.Login)
		// the first account bootstraps itself; later ones need an admin token
		public.POST("/register", middlewares.OptionalAuth(deps.Tokens, cfg.CookieName), userCtrl.Register)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware(deps.Tokens, cfg.CookieName))
	{
		ws.GET("/floor", floorCtrl.FloorHandler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware(deps.Tokens, cfg.CookieName))
	auth.Use(middlewares.RoleCheck(Roles))

	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/profile", userCtrl.GetProfile)
	auth.GET("/users", userCtrl.GetAllUsers)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", tableCtrl.CreateTable)
	auth.GET("/tables/live", tableCtrl.GetLiveTables)
	auth.POST("/tables/transfer", tableCtrl.TransferSession)
	auth.GET("/tables/:id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:id", tableCtrl.UpdateTable)
	auth.POST("/tables/:id/start", tableCtrl.StartSession)
	auth.POST("/tables/:id/stop", tableCtrl.StopSession)
	auth.POST("/tables/:id/pause", tableCtrl.PauseSession)
	auth.POST("/tables/:id/resume", tableCtrl.ResumeSession)
	auth.POST("/tables/:id/clean", tableCtrl.MarkTableClean)
	auth.GET("/tables/:id/session", tableCtrl.GetSession)
	auth.POST("/tables/:id/items", tableCtrl.AddItem)
	auth.DELETE("/tables/:id/items/:item_id", tableCtrl.RemoveItem)

	// RESERVATIONS
	auth.GET("/reservations", reservationCtrl.GetReservations)
	auth.POST("/reservations", reservationCtrl.CreateReservation)
	auth.GET("/reservations/check", reservationCtrl.CheckReservations)
	auth.POST("/reservations/confirm-start", reservationCtrl.ConfirmStart)
	auth.POST("/reservations/:id/confirm", reservationCtrl.ConfirmReservation)
	auth.POST("/reservations/:id/cancel", reservationCtrl.CancelReservation)

	// TRANSACTIONS
	auth.GET("/transactions", transactionCtrl.GetTransactions)
	auth.POST("/transactions", transactionCtrl.CreateTransaction)
	auth.GET("/transactions/:id", transactionCtrl.GetTransactionByID)

	// MEMBERS
	auth.GET("/members", memberCtrl.GetMembers)
	auth.POST("/members", memberCtrl.CreateMember)
	auth.GET("/members/:id", memberCtrl.GetMemberByID)
	auth.POST("/members/:id/topup", memberCtrl.TopUp)
	auth.GET("/members/:id/points", memberCtrl.GetPoints)

	// CATALOG
	catalogCache := middlewares.CatalogCache(catalog)
	auth.GET("/categories", catalogCache, productCtrl.GetAllCategories)
	auth.POST("/categories", productCtrl.CreateCategory)
	auth.GET("/products", catalogCache, productCtrl.GetAllProducts)
	auth.POST("/products", productCtrl.CreateProduct)
	auth.PATCH("/products/:id", productCtrl.UpdateProduct)
	auth.POST("/products/:id/stock", productCtrl.AdjustStock)

	// SHIFTS
	auth.POST("/shifts/open", shiftCtrl.OpenShift)
	auth.GET("/shifts/current", shiftCtrl.CurrentShift)
	auth.POST("/shifts/:id/close", shiftCtrl.CloseShift)
	auth.GET("/shifts/:id/z-report", shiftCtrl.GetZReport)

	// ADMIN
	admin := auth.Group("/admin")
	{
		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
		admin.GET("/notifications", adminCtrl.GetNotifications)
		admin.GET("/cleaning-logs", adminCtrl.GetCleaningLogs)
	}

	return r
}
