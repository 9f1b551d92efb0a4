package backoffice

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/autolot/auction/internal/backoffice/handler"
	"github.com/autolot/auction/internal/config"
	"github.com/autolot/auction/internal/repository"
	"github.com/autolot/auction/internal/service"
)

// BackofficeDeps bundles every dependency needed for the admin router.
type BackofficeDeps struct {
	AuthSvc    *service.AuthService
	AuctionSvc *service.AuctionService
	UserRepo   *repository.UserRepository
	WalletRepo *repository.WalletRepository
	OrderRepo  *repository.OrderRepository
	Cfg        *config.Config
}

// SetupBackofficeRouter creates the admin Gin engine on port 8081.
func SetupBackofficeRouter(deps BackofficeDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(ipWhitelistMiddleware(deps.Cfg.Server.BackofficeAllowedIPs))

	auctionH := handler.NewAuctionAdminHandler(deps.AuctionSvc, deps.Cfg)
	userH := handler.NewUserAdminHandler(deps.UserRepo, deps.WalletRepo, deps.Cfg)
	orderH := handler.NewOrderAdminHandler(deps.OrderRepo, deps.Cfg)

	jwtMW := adminJWTMiddleware(deps.AuthSvc)

	admin := r.Group("/admin")
	admin.Use(jwtMW)
	{
		// Auctions
		a := admin.Group("/auctions")
		{
			a.GET("", auctionH.List)
			a.POST("", auctionH.Create)
			a.GET("/:id", auctionH.Detail)
			a.POST("/:id/lots", auctionH.AddLot)
			a.POST("/:id/start", auctionH.Start)
			a.POST("/:id/pause", auctionH.Pause)
			a.POST("/:id/resume", auctionH.Resume)
			a.POST("/:id/advance", auctionH.AdvanceLot)
		}

		// Users
		u := admin.Group("/users")
		{
			u.GET("", userH.List)
			u.GET("/:id", userH.Detail)
			u.POST("/:id/suspend", userH.Suspend)
			u.POST("/:id/activate", userH.Activate)
			u.POST("/:id/ban", userH.Ban)
			u.POST("/:id/tier", userH.SetTier)
			u.POST("/:id/role", userH.SetRole)
		}

		// Orders
		o := admin.Group("/orders")
		{
			o.GET("", orderH.List)
			o.GET("/:id", orderH.Detail)
		}
	}

	return r
}

// ── IP whitelist middleware ───────────────────────────────────────────────────

// ipWhitelistMiddleware blocks requests from IPs not in the allowlist.
// allowedIPs is a comma-separated string; empty means allow all.
func ipWhitelistMiddleware(allowedIPs string) gin.HandlerFunc {
	if allowedIPs == "" {
		return func(c *gin.Context) { c.Next() } // dev mode: no restriction
	}

	allowed := make(map[string]bool)
	for _, ip := range strings.Split(allowedIPs, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !allowed[clientIP] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "access denied: your IP is not whitelisted",
			})
			return
		}
		c.Next()
	}
}

// ── Admin JWT middleware ──────────────────────────────────────────────────────

// adminJWTMiddleware validates a JWT and requires the caller to have an
// admin-capable role.
func adminJWTMiddleware(authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := authSvc.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		adminRoles := map[string]bool{
			"admin":      true,
			"superadmin": true,
		}
		if !adminRoles[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}
