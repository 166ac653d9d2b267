package routes

import (
	"net/http"

	"github.com/ArowuTest/retail-loyalty-backend/internal/handlers"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/metrics"
	"github.com/ArowuTest/retail-loyalty-backend/internal/middleware"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerDependencies groups the handlers the router mounts
type HandlerDependencies struct {
	MemberHandler      *handlers.MemberHandler
	TransactionHandler *handlers.TransactionHandler
	VoucherHandler     *handlers.VoucherHandler
	RuleHandler        *handlers.RuleHandler
	EventHandler       *handlers.EventHandler
	DrawHandler        *handlers.DrawHandler
	PrizeHandler       *handlers.PrizeHandler
	WinnerHandler      *handlers.WinnerHandler
}

// RouterOptions holds what the middleware chain needs
type RouterOptions struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// SetupRouter sets up the router
func SetupRouter(opts RouterOptions, deps HandlerDependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.LoggerMiddleware(opts.Logger, opts.Metrics))
	router.Use(middleware.CORSMiddleware(opts.AllowedOrigins))
	router.Use(middleware.ErrorHandler(opts.Logger))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Public routes
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(opts.JWTSecret, opts.Logger))

	cashier := middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleCashier)
	admin := middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin)

	members := protected.Group("/members", cashier)
	{
		members.POST("", deps.MemberHandler.CreateMember)
		members.GET("/:id", deps.MemberHandler.GetMember)
		members.GET("/:id/vouchers", deps.MemberHandler.ListVouchers)
		members.GET("/:id/transactions", deps.MemberHandler.ListTransactions)
	}

	transactions := protected.Group("/transactions", cashier)
	{
		transactions.POST("", deps.TransactionHandler.RecordTransaction)
		transactions.GET("/:id", deps.TransactionHandler.GetTransaction)
	}

	vouchers := protected.Group("/vouchers", cashier)
	{
		vouchers.POST("/validate", deps.VoucherHandler.ValidateVoucher)
		vouchers.POST("/redeem", deps.VoucherHandler.RedeemVoucher)
		vouchers.POST("/expire", admin, deps.VoucherHandler.ExpireVouchers)
		vouchers.GET("/:id", deps.VoucherHandler.GetVoucher)
		vouchers.GET("/:id/logs", deps.VoucherHandler.ListLogs)
		vouchers.POST("/:id/cancel", admin, deps.VoucherHandler.CancelVoucher)
	}

	rules := protected.Group("/rules", admin)
	{
		rules.POST("", deps.RuleHandler.CreateRule)
		rules.GET("", deps.RuleHandler.ListRules)
		rules.GET("/active", deps.RuleHandler.GetActiveRule)
		rules.GET("/:id", deps.RuleHandler.GetRule)
		rules.PUT("/:id", deps.RuleHandler.UpdateRule)
		rules.POST("/:id/activate", deps.RuleHandler.ActivateRule)
		rules.POST("/:id/deactivate", deps.RuleHandler.DeactivateRule)
	}

	events := protected.Group("/events", admin)
	{
		events.POST("", deps.EventHandler.CreateEvent)
		events.GET("", deps.EventHandler.ListEvents)
		events.GET("/active", deps.EventHandler.ListActiveEvents)
		events.GET("/:id", deps.EventHandler.GetEvent)
		events.PUT("/:id", deps.EventHandler.UpdateEvent)
	}

	draws := protected.Group("/draws", admin)
	{
		draws.POST("", deps.DrawHandler.CreateDraw)
		draws.GET("", deps.DrawHandler.ListDraws)
		draws.GET("/:id", deps.DrawHandler.GetDraw)
		draws.POST("/:id/run", deps.DrawHandler.RunDraw)
		draws.POST("/:id/complete", deps.DrawHandler.CompleteDraw)
		draws.POST("/:id/cancel", deps.DrawHandler.CancelDraw)
		draws.GET("/:id/winners", deps.DrawHandler.ListWinners)
	}

	prizes := protected.Group("/prizes", cashier)
	{
		prizes.POST("", admin, deps.PrizeHandler.CreatePrize)
		prizes.GET("", deps.PrizeHandler.ListPrizes)
		prizes.GET("/available", deps.PrizeHandler.ListAvailablePrizes)
		prizes.GET("/:id", deps.PrizeHandler.GetPrize)
		prizes.PUT("/:id", admin, deps.PrizeHandler.UpdatePrize)
	}

	winners := protected.Group("/winners", cashier)
	{
		winners.GET("/:id", deps.WinnerHandler.GetWinner)
		winners.POST("/:id/choose-prize", deps.WinnerHandler.ChoosePrize)
		winners.POST("/:id/collect", admin, deps.WinnerHandler.CollectPrize)
	}

	return router
}
