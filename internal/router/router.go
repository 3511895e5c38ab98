// Package router wires HTTP routes to handlers and middleware.  Route
// groups compose the same building blocks everywhere: the identity
// resolver runs first, then a role gate, then the handler.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/arisehq/arise-api/internal/handler"
	"github.com/arisehq/arise-api/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication or state.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints.  The rate limiter guards
// everything under /v1/auth, since those are the endpoints worth brute-forcing.
// Register, login and refresh do not require a resolved identity; /v1/me
// sits behind the resolver and the auth gate.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, resolve echo.MiddlewareFunc, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh trades the cookie for a new access token; DELETE on the same
	// path is logout (clears the cookie, no server-side state to drop).
	g.POST("/refresh", a.Refresh)
	g.DELETE("/refresh", a.Logout)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", resolve)
	auth.GET("/me", a.Me, middleware.RequireAuth())
	auth.DELETE("/account", a.DeleteAccount, middleware.RequireAuth())
}
