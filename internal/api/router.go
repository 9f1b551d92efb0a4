package api

import (
	"net/http"

	"github.com/autolot/auction/internal/api/handler"
	"github.com/autolot/auction/internal/api/middleware"
	"github.com/autolot/auction/internal/config"
	"github.com/autolot/auction/internal/repository"
	"github.com/autolot/auction/internal/service"
	"github.com/autolot/auction/internal/ws"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	AuthSvc    *service.AuthService
	AuctionSvc *service.AuctionService
	BidSvc     *service.BidService
	UserRepo   *repository.UserRepository
	WalletRepo *repository.WalletRepository
	OrderRepo  *repository.OrderRepository
	Hub        *ws.Hub
	Cfg        *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	userH := handler.NewUserHandler(deps.AuthSvc, deps.UserRepo)
	auctionH := handler.NewAuctionHandler(deps.AuctionSvc)
	bidH := handler.NewBidHandler(deps.BidSvc)
	walletH := handler.NewWalletHandler(deps.WalletRepo)
	orderH := handler.NewOrderHandler(deps.OrderRepo)

	// ── JWT middleware (shared) ───────────────────────────────────────────────
	jwtMW := middleware.JWTMiddleware(deps.AuthSvc)

	// ── Rate limiters ─────────────────────────────────────────────────────────
	authRL := middleware.RateLimitMiddleware(10) // 10 req/s per IP for auth endpoints
	bidRL := middleware.RateLimitMiddleware(30)  // 30 req/s per IP for bid endpoints

	api := r.Group("/api")
	{
		// ── Auth (public, strict rate limit) ─────────────────────────────────
		auth := api.Group("/auth")
		auth.Use(authRL)
		{
			auth.POST("/register", userH.Register)
			auth.POST("/login", userH.Login)
			auth.POST("/refresh", userH.Refresh)
		}

		// ── Auctions & lots (public reads) ───────────────────────────────────
		auctions := api.Group("/auctions")
		{
			auctions.GET("", auctionH.ListAuctions)
			auctions.GET("/:id", auctionH.GetAuction)
		}
		lots := api.Group("/lots")
		{
			lots.GET("/active", auctionH.GetActiveLots)
			lots.GET("/:id", auctionH.GetLot)
			lots.GET("/:id/bids", bidH.GetLotBids)
		}

		// ── Authenticated routes ──────────────────────────────────────────────
		authed := api.Group("")
		authed.Use(jwtMW)
		{
			// Profile
			authed.GET("/me", userH.Me)

			// Bidding
			bidding := authed.Group("/lots")
			bidding.Use(bidRL)
			{
				bidding.POST("/:id/bids", bidH.PlaceBid)
				bidding.PUT("/:id/max-bid", bidH.SetMaxBid)
				bidding.DELETE("/:id/max-bid", bidH.CancelMaxBid)
			}
			authed.GET("/bids/my", bidH.GetMyBids)
			authed.GET("/max-bids/my", bidH.GetMyMaxBids)

			// Orders
			orders := authed.Group("/orders")
			{
				orders.GET("/my", orderH.GetMyOrders)
				orders.GET("/:id", orderH.GetOrder)
			}

			// Wallet
			authed.GET("/wallet/balance", walletH.GetBalance)
		}
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only configured origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			// Development: allow any origin
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			// Production: allow only the marketplace frontends
			allowed := map[string]bool{
				"https://autolot.com":     true,
				"https://www.autolot.com": true,
			}
			if allowed[origin] {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
