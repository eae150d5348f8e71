package router

import (
	"github.com/gin-gonic/gin"
	"github.com/platoo/order-service/config"
	"github.com/platoo/order-service/controllers"
	"github.com/platoo/order-service/kds"
	"github.com/platoo/order-service/middlewares"
	"github.com/platoo/order-service/services"
	"github.com/platoo/order-service/utils"
	"gorm.io/gorm"
)

// OrderDeps is what the order service router is built from.
type OrderDeps struct {
	DB     *gorm.DB
	Orders *services.OrderService
	Hub    *kds.Hub
	Config config.Config
}

func newEngine(cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSAllowedOrigin))
	return r
}

// SetupRouter wires the order service.
func SetupRouter(deps OrderDeps) *gin.Engine {
	cfg := deps.Config
	secret := []byte(cfg.JWTSecret)
	r := newEngine(cfg)
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow).RateLimit())

	healthCtrl := controllers.NewHealthController(deps.DB, config.ModeOrders)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	kdsCtrl := controllers.NewKDSController(deps.Hub, cfg.CORSAllowedOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", healthCtrl.Ping)
	r.GET("/health", healthCtrl.Health)

	orderLimiter := middlewares.NewIPRateLimiter(cfg.OrderRatePerSecond, cfg.OrderRateBurst)
	r.POST("/orders", orderLimiter.Limit(), orderCtrl.CreateOrder)

	r.GET("/ws/kds", middlewares.WebSocketAuthMiddleware(secret), kdsCtrl.KDSHandler)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	customer := r.Group("")
	customer.Use(middlewares.AuthMiddleware(secret))
	{
		customer.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		customer.GET("/users/:user_id/orders", orderCtrl.GetUserOrders)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(secret))
	{
		admin.GET("/orders",
			middlewares.RequireRoles(utils.RoleAdmin, utils.RoleRestaurant),
			orderCtrl.GetAllOrders)
		admin.PATCH("/orders/:order_id/status",
			middlewares.RequireRoles(utils.RoleAdmin, utils.RoleRestaurant, utils.RoleDelivery),
			orderCtrl.UpdateOrderStatus)
		admin.DELETE("/orders/:order_id",
			middlewares.RequireRoles(utils.RoleAdmin),
			orderCtrl.DeleteOrder)
	}

	return r
}

// SetupMenuRouter wires the menu service under /api. Catalog reads are not
// rate limited.
func SetupMenuRouter(db *gorm.DB, cfg config.Config) *gin.Engine {
	r := newEngine(cfg)

	healthCtrl := controllers.NewHealthController(db, config.ModeMenu)
	menuCtrl := controllers.NewMenuController(db)

	r.GET("/ping", healthCtrl.Ping)
	r.GET("/health", healthCtrl.Health)

	api := r.Group("/api")
	{
		api.GET("/items", menuCtrl.GetAllMenus)
		api.GET("/items/:id", menuCtrl.GetMenuByID)

		admin := api.Group("/")
		admin.Use(middlewares.AuthMiddleware([]byte(cfg.JWTSecret)), middlewares.RequireRoles(utils.RoleAdmin))
		admin.POST("/items", menuCtrl.CreateMenu)
		admin.PATCH("/items/:id", menuCtrl.UpdateMenu)
	}

	return r
}
