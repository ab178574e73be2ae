package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/moviehub/movie-api/internal/config"
	"github.com/moviehub/movie-api/internal/handler"
	"github.com/moviehub/movie-api/internal/middleware"
	"github.com/moviehub/movie-api/internal/model"
)

// Register wires every route and its middleware onto the Echo instance.
// The rate limiter covers everything under /api; the auth guard covers
// /api/auth/me and the whole movie resource. protect and limiter are
// passed in pre-built so tests can substitute them.
func Register(e *echo.Echo, cfg config.Config, limiter echo.MiddlewareFunc,
	protect echo.MiddlewareFunc, a *handler.AuthHandler, m *handler.MovieHandler) {

	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.Gzip())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: cfg.CORSOrigin != "*",
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	if cfg.Env == "development" || cfg.Env == "dev" {
		e.Use(echomw.Logger())
	}

	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)

	api := e.Group("/api", limiter)

	auth := api.Group("/auth")
	auth.POST("/signup", a.Signup)
	auth.POST("/login", a.Login)
	auth.GET("/logout", a.Logout)
	auth.GET("/me", a.Me, protect)

	// Every movie route requires a live session; the role allow-list is
	// declarative per the route group, and ownership is enforced inside
	// the mutation handlers.
	movies := api.Group("/movies", protect, middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	movies.GET("", m.List)
	movies.POST("", m.Create)
	movies.GET("/:id", m.Get)
	movies.PUT("/:id", m.Update)
	movies.DELETE("/:id", m.Delete)
}
