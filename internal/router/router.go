// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/irodion/concert-ticketing/internal/handler"
	"github.com/irodion/concert-ticketing/internal/middleware"
	"github.com/irodion/concert-ticketing/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	Public *handler.PublicHandler
	Fan    *handler.FanHandler
	Band   *handler.BandHandler
	Admin  *handler.AdminHandler
}

// RegisterRoutes registers routes that do not require authentication.
// Currently only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic mounts the guest browse endpoints. No JWT or role
// middleware runs here; caching and rate limiting are applied globally
// in main.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/v1/concerts", p.SearchConcerts)
	e.GET("/v1/concerts/:id", p.GetConcert)
}

// RegisterAuth mounts registration, login and the token lifecycle under
// /v1/auth, plus the authenticated /v1/me endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes either a bearer token (revokes all sessions) or a
	// refresh token in the body (revokes that session only).
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterFan mounts the ticket purchase and favourites endpoints.
// Every route requires a valid access token with the FAN role.
func RegisterFan(e *echo.Echo, f *handler.FanHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleFan))
	g.POST("/concerts/:id/purchase", f.Purchase)
	g.GET("/tickets", f.MyTickets)
	g.GET("/tickets/:id", f.GetTicket)
	g.GET("/favourites", f.ListFavourites)
	g.POST("/favourites/:id", f.AddFavourite)
	g.DELETE("/favourites/:id", f.RemoveFavourite)
}

// RegisterBand mounts concert management for band accounts.
func RegisterBand(e *echo.Echo, b *handler.BandHandler, jwtSecret string) {
	g := e.Group("/v1/band", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleBand))
	g.GET("/concerts", b.Dashboard)
	g.POST("/concerts", b.Create)
	g.PUT("/concerts/:id", b.Update)
	g.POST("/concerts/:id/cancel", b.Cancel)
}

// RegisterAdmin mounts the moderation endpoints.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
	g.PUT("/users/:id/role", a.UpdateUserRole)
	g.POST("/concerts/:id/status", a.ForceStatus)
	g.POST("/tickets/:id/void", a.VoidTicket)
}

// RegisterAll mounts everything in one call.
func RegisterAll(e *echo.Echo, h Handlers, jwtSecret string) {
	RegisterRoutes(e)
	RegisterPublic(e, h.Public)
	RegisterAuth(e, h.Auth, jwtSecret)
	RegisterFan(e, h.Fan, jwtSecret)
	RegisterBand(e, h.Band, jwtSecret)
	RegisterAdmin(e, h.Admin, jwtSecret)
}
