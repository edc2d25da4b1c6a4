package api

import (
	"net/http"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

// OAuth state cookie parameters.
const (
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 600 // seconds
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SessionResponse is returned after a successful OAuth callback.
type SessionResponse struct {
	Token    string `json:"token"`
	Identity any    `json:"identity"`
}

// Login handles GET /auth/github/login: mints a state token, stores it in
// a short-lived cookie and redirects to the provider.
func (h *AuthHandler) Login(c *gin.Context) {
	state := h.authService.NewState()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authService.LoginURL(state))
}

// Callback handles GET /auth/github/callback: verifies the state, exchanges
// the code through the identity provider and issues a session token.
func (h *AuthHandler) Callback(c *gin.Context) {
	expected, err := c.Cookie(stateCookieName)
	if err != nil || expected == "" || c.Query("state") != expected {
		respondError(c, domain.UnauthenticatedError("oauth state mismatch; restart the login flow"))
		return
	}
	// One-shot: clear the state cookie whatever happens next.
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	token, ident, err := h.authService.HandleCallback(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, SessionResponse{Token: token, Identity: ident})
}

// Me handles GET /auth/me: echoes the verified identity for a valid token.
func (h *AuthHandler) Me(c *gin.Context) {
	ident, err := identityFromContext(c)
	if err != nil {
		respondError(c, domain.UnauthenticatedError("authentication required"))
		return
	}
	respondData(c, http.StatusOK, ident)
}
