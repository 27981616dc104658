package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	refreshCookieName = "refreshToken"
	resetCookieName   = "resetCookie"
	returnCookieName  = "returnCookie"

	resetCookieMaxAge  = 15 * 60
	returnCookieMaxAge = 5 * 60
)

// setRefreshCookie binds the refresh token to an httpOnly strict-same-site
// cookie whose max-age matches the token's own lifetime.
func setRefreshCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func setResetCookie(c *gin.Context, code string, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(resetCookieName, code, resetCookieMaxAge, "/", "", secure, true)
}

func clearResetCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(resetCookieName, "", -1, "/", "", secure, true)
}

func setReturnCookie(c *gin.Context, returnTo string, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(returnCookieName, returnTo, returnCookieMaxAge, "/", "", secure, true)
}

func clearReturnCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(returnCookieName, "", -1, "/", "", secure, true)
}

// clearAllCookies expires every cookie the request carried.
func clearAllCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	for _, cookie := range c.Request.Cookies() {
		c.SetCookie(cookie.Name, "", -1, "/", "", secure, true)
	}
}
