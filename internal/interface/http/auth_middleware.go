package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avallejos/visitauth/internal/domain/auth"
)

// authMiddleware guards bearer-protected routes. It verifies the access
// token and injects the decoded claims into the request context.
func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		token := strings.TrimSpace(parts[1])
		claims, err := svc.ValidateAccess(c.Request.Context(), token)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
