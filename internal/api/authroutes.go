package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jumak-kr/jumakweb/internal/auth"
)

const (
	stateCookie = "jumak_oauth_state"
	nonceCookie = "jumak_oauth_nonce"
)

// Login: GET /api/auth/login
//
// Plants state and nonce cookies and redirects to the provider.
func (h *Handler) Login(c *gin.Context) {
	state := auth.NewStateToken()
	nonce := auth.NewStateToken()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	c.SetCookie(nonceCookie, nonce, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, h.authSvc.LoginURL(state, nonce))
}

// Callback: GET /api/auth/callback?code=...&state=...
func (h *Handler) Callback(c *gin.Context) {
	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	nonce, err := c.Cookie(nonceCookie)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing nonce"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	u, err := h.authSvc.HandleCallback(c.Request.Context(), code, nonce)
	if err != nil {
		h.log.Error().Err(err).Msg("oauth callback failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login failed"})
		return
	}
	session, err := h.authSvc.IssueSession(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)
	c.SetCookie(nonceCookie, "", -1, "/", "", false, true)
	c.SetCookie(auth.SessionCookie, session, int(auth.SessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Logout: POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"logged_out": true}})
}

// Session: GET /api/auth/session
//
// Returns the current user and session status. Missing or invalid cookies
// are an unauthenticated session, not an error.
func (h *Handler) Session(c *gin.Context) {
	cookie, err := c.Cookie(auth.SessionCookie)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"user": nil, "status": "unauthenticated"})
		return
	}
	u, err := h.authSvc.ParseSession(cookie)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"user": nil, "status": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "status": "authenticated"})
}
