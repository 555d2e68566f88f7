package router

import (
	"github.com/labstack/echo/v4"

	"github.com/perfeicloud/cashbook-api/internal/auth"
	"github.com/perfeicloud/cashbook-api/internal/handler"
	"github.com/perfeicloud/cashbook-api/internal/middleware"
)

// Handlers bundles every handler the router wires up.  main builds one
// of these after constructing the repositories.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	App      *handler.ApplicationHandler
	Book     *handler.BookHandler
	Account  *handler.AccountHandler
	Category *handler.CategoryHandler
	Tag      *handler.TagHandler
	Tally    *handler.TallyHandler
	Perm     *handler.PermissionHandler
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the login endpoints under /v1/authorize with the
// rate limiter applied, then the token-guarded API surface under /v1.
func RegisterAuth(e *echo.Echo, h Handlers, verifier *auth.Verifier, limiter echo.MiddlewareFunc) {
	// Login and verification-code issuance accept no token.  Both are
	// credential-guessing targets, so the limiter sits on this group.
	g := e.Group("/v1/authorize")
	g.Use(limiter)
	g.POST("/login", h.Auth.Login)
	g.POST("/vcode", h.Auth.RequestVCode)
	g.POST("/register", h.Auth.Register)

	// Everything else requires a valid token issued for a registered
	// application.  TokenGuard puts the user id on the context.
	v1 := e.Group("/v1")
	v1.Use(middleware.TokenGuard(verifier))

	v1.GET("/my", h.User.My)
	v1.GET("/userinfo", h.User.Userinfo)
	v1.PUT("/userinfo", h.User.Userinfo)
	v1.PUT("/password", h.Auth.ChangePassword)
	v1.DELETE("/user", h.User.Remove)
	v1.GET("/user/configure", h.User.Configure)
	v1.PUT("/user/configure", h.User.Configure)

	v1.POST("/application", h.App.Create)
	v1.GET("/applications", h.App.List)
	v1.GET("/application/:id", h.App.ByID)
	v1.PUT("/application/:id", h.App.ByID)
	v1.DELETE("/application/:id", h.App.ByID)

	v1.POST("/book", h.Book.Create)
	v1.GET("/books", h.Book.List)
	v1.GET("/book/:id", h.Book.ByID)
	v1.PUT("/book/:id", h.Book.ByID)
	v1.DELETE("/book/:id", h.Book.ByID)
	v1.POST("/book/:id/share", h.Book.Share)
	v1.GET("/book/:id/configure", h.Book.Configure)
	v1.PUT("/book/:id/configure", h.Book.Configure)

	v1.POST("/account", h.Account.Create)
	v1.GET("/accounts", h.Account.List)
	v1.GET("/account/:id", h.Account.ByID)
	v1.PUT("/account/:id", h.Account.ByID)
	v1.DELETE("/account/:id", h.Account.ByID)

	v1.POST("/category", h.Category.Create)
	v1.GET("/categories", h.Category.List)
	v1.GET("/category/:id", h.Category.ByID)
	v1.PUT("/category/:id", h.Category.ByID)
	v1.DELETE("/category/:id", h.Category.ByID)

	v1.POST("/tag", h.Tag.Create)
	v1.GET("/tags", h.Tag.List)
	v1.GET("/tag/:id", h.Tag.ByID)
	v1.PUT("/tag/:id", h.Tag.ByID)
	v1.DELETE("/tag/:id", h.Tag.ByID)

	v1.POST("/permission", h.Perm.Grant)
	v1.GET("/permission", h.Perm.Authority)
	v1.DELETE("/permission/:id", h.Perm.Revoke)

	v1.POST("/tally", h.Tally.Create)
	v1.GET("/tallies", h.Tally.ListRange)
	v1.GET("/tally/:id", h.Tally.ByID)
	v1.PUT("/tally/:id", h.Tally.ByID)
	v1.DELETE("/tally/:id", h.Tally.ByID)
}
