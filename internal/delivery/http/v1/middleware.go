package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/tracklin/internal/services"
)

const (
	userIDCtxKey    = "user_id"
	sessionIDCtxKey = "session_id"
)

// HandleAuthMiddleware resolves the caller's identity. An expired access
// token is renewed in place with the refresh token cookie.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	accessToken, ok := bearerToken(c)
	if !ok {
		h.logger.Error().Msg("access token required")
		abort(c, newUnauthorizedError(http.StatusText(http.StatusUnauthorized)))
		return
	}

	fingerprint := generateFingerprint(c)
	session, err := h.auth.Authenticate(c, accessToken, fingerprint)
	if errors.Is(err, jwt.ErrTokenExpired) {
		h.logger.Debug().Msg("access token expired, refreshing")

		result, refreshErr := h.refresh(c)
		if refreshErr != nil {
			abort(c, refreshError(refreshErr))
			return
		}
		h.setTokenCookies(c, result)

		session, err = h.auth.Authenticate(c, result.AccessToken, fingerprint)
	}
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to authenticate")
		if errors.Is(err, services.ErrStoreUnavailable) {
			abort(c, newStatusTextError(http.StatusServiceUnavailable))
			return
		}
		abort(c, newUnauthorizedError(http.StatusText(http.StatusUnauthorized)))
		return
	}

	c.Set(userIDCtxKey, session.UserID)
	c.Set(sessionIDCtxKey, session.ID)
	c.Next()
}

// bearerToken reads the token from the Authorization header and falls
// back to the access token cookie.
func bearerToken(c *gin.Context) (string, bool) {
	const bearerPrefix = "Bearer"

	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	token, err := c.Cookie(accessTokenCookie)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func callerID(c *gin.Context) string {
	userID, _ := getStringFromContext(c, userIDCtxKey)
	return userID
}
