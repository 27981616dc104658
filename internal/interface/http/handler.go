package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/domain/visits"
	"github.com/avallejos/visitauth/internal/infra/config"
)

// Handler wires the HTTP transport to the domain services.
type Handler struct {
	authSvc   auth.Service
	visitsSvc visits.Service
	secure    bool
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, authSvc auth.Service, visitsSvc visits.Service, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:   authSvc,
		visitsSvc: visitsSvc,
		secure:    cfg.Production(),
		logger:    logger.With("component", "http.handler"),
	}
}

// Register creates an account and starts a session at the no-remember tier.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	sess, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	setRefreshCookie(c, sess.RefreshToken, sess.RefreshTTL, h.secure)
	c.JSON(http.StatusOK, gin.H{"accessToken": sess.AccessToken})
}

// Login authenticates email/password credentials.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	sess, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	setRefreshCookie(c, sess.RefreshToken, sess.RefreshTTL, h.secure)
	c.JSON(http.StatusOK, gin.H{"accessToken": sess.AccessToken})
}

// AuthRedirect returns the provider's authorization URL and captures the
// post-login return target in a short-lived cookie.
func (h *Handler) AuthRedirect(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		returnTo := c.Query("returnTo")
		if returnTo == "" {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing return URL", nil))
			return
		}
		url, err := h.authSvc.AuthURL(c.Request.Context(), provider)
		if err != nil {
			abortWithServiceError(c, err)
			return
		}
		setReturnCookie(c, returnTo, h.secure)
		c.JSON(http.StatusOK, gin.H{"authUrl": url})
	}
}

// AuthCallback finishes the OAuth flow: code exchange, profile fetch,
// identity resolution, always at the remember tier, then a redirect back
// to the URL stored when the flow began.
func (h *Handler) AuthCallback(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := h.authSvc.ExternalLogin(c.Request.Context(), provider, c.Query("code"))
		if err != nil {
			abortWithServiceError(c, err)
			return
		}
		setRefreshCookie(c, sess.RefreshToken, sess.RefreshTTL, h.secure)

		returnTo, cookieErr := c.Cookie(returnCookieName)
		clearReturnCookie(c, h.secure)
		if cookieErr != nil || returnTo == "" {
			returnTo = "/"
		}
		c.Redirect(http.StatusFound, returnTo)
	}
}

// Refresh mints a new access token from a valid, un-denied refresh cookie.
func (h *Handler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)
	access, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

// Logout records the refresh token in the denylist. Cookies are cleared
// even when verification fails, but the failure is still reported.
func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)
	err := h.authSvc.Logout(c.Request.Context(), token)
	clearAllCookies(c, h.secure)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.String(http.StatusOK, "ok")
}

// Delete removes the account after re-authenticating, denies the refresh
// token and clears cookies.
func (h *Handler) Delete(c *gin.Context) {
	var req auth.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	token, _ := c.Cookie(refreshCookieName)
	if err := h.authSvc.DeleteAccount(c.Request.Context(), req, token); err != nil {
		abortWithServiceError(c, err)
		return
	}
	clearAllCookies(c, h.secure)
	c.Status(http.StatusNoContent)
}

// ResetPassword mails a reset code and mirrors it into the reset cookie.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	code, err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	setResetCookie(c, code, h.secure)
	c.JSON(http.StatusOK, gin.H{"message": "Email sent."})
}

// ChangePassword consumes the reset code and persists the new digest.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	cookieCode, _ := c.Cookie(resetCookieName)
	if err := h.authSvc.ChangePassword(c.Request.Context(), req, cookieCode); err != nil {
		abortWithServiceError(c, err)
		return
	}
	clearResetCookie(c, h.secure)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// AddVisit records a visit for the authenticated user.
func (h *Handler) AddVisit(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing claims", nil))
		return
	}
	if err := h.visitsSvc.Add(c.Request.Context(), claims.User.ID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetVisits lists the authenticated user's visit history.
func (h *Handler) GetVisits(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing claims", nil))
		return
	}
	history, err := h.visitsSvc.History(c.Request.Context(), claims.User.ID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
