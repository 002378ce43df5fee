package api

import (
	"net/http"

	"github.com/arcade-cabinet/beppo-laughs/api/i"
	"github.com/gin-gonic/gin"
)

// Router owns the HTTP server and the controllers mounted on it.
type Router struct {
	addr                    string
	baseURL                 string
	controllers             []i.Controller
	authorizationMiddleware gin.HandlerFunc
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	Addr                    string // Address to listen on
	BaseURL                 string // Base URL for API routes
	Controllers             []i.Controller
	AuthorizationMiddleware gin.HandlerFunc
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	return &Router{
		addr:                    config.Addr,
		baseURL:                 config.BaseURL,
		controllers:             config.Controllers,
		authorizationMiddleware: config.AuthorizationMiddleware,
	}
}

// Handler builds the route tree.
//
// Routes are grouped under the base URL with two access levels:
// - Public routes: No authentication required.
// - Protected routes: A session token is required.
func (r *Router) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api := router.Group(r.baseURL)
	{
		publicRoutes := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterPublic(publicRoutes)
			}
		}

		protectedRoutes := api.Group("/v1")
		protectedRoutes.Use(r.authorizationMiddleware)
		{
			for _, c := range r.controllers {
				c.RegisterProtected(protectedRoutes)
			}
		}
	}

	return router
}

// Server returns an HTTP server for the route tree, ready for ListenAndServe
// and Shutdown.
func (r *Router) Server() *http.Server {
	gin.ForceConsoleColor()
	return &http.Server{
		Addr:    r.addr,
		Handler: r.Handler(),
	}
}
