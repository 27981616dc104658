package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
	)

	api := router.Group("/api/v1")
	{
		api.POST("/register", handler.Register)
		api.POST("/login", handler.Login)
		api.POST("/refresh-token", handler.Refresh)
		api.GET("/logout", handler.Logout)
		api.DELETE("/delete", handler.Delete)

		api.GET("/auth/google", handler.AuthRedirect(auth.ProviderGoogle))
		api.GET("/auth/google/callback", handler.AuthCallback(auth.ProviderGoogle))
		api.GET("/auth/github", handler.AuthRedirect(auth.ProviderGitHub))
		api.GET("/auth/github/callback", handler.AuthCallback(auth.ProviderGitHub))

		api.POST("/reset-password", handler.ResetPassword)
		api.POST("/change-pass", handler.ChangePassword)

		protected := api.Group("")
		protected.Use(authMiddleware(authSvc))
		{
			protected.POST("/add-visit", handler.AddVisit)
			protected.GET("/get-visits", handler.GetVisits)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "not_found", "message": "page not found"}})
	})

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
