package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tracklin/internal/services"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=255"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: generateFingerprint(c),
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		switch {
		case errors.Is(err, services.ErrUserNotFound),
			errors.Is(err, services.ErrUserPasswordMismatch):
			// Don't tell which of the two was wrong.
			abort(c, newUnauthorizedError("invalid email or password"))
		case errors.Is(err, services.ErrStoreUnavailable):
			abort(c, newStatusTextError(http.StatusServiceUnavailable))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.setTokenCookies(c, result)
	c.Status(http.StatusOK)
}

func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	result, err := h.refresh(c)
	if err != nil {
		abort(c, refreshError(err))
		return
	}

	h.setTokenCookies(c, result)
	c.Status(http.StatusOK)
}

type registerRequest struct {
	loginRequest
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	h.logger.Info().
		Str("email", req.Email).
		Msg("register request")

	result, err := h.auth.Register(c, services.LoginParams{
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: generateFingerprint(c),
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			abort(c, newConflictError(services.ErrUserAlreadyExists.Error()))
		case errors.Is(err, services.ErrStoreUnavailable):
			abort(c, newStatusTextError(http.StatusServiceUnavailable))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.setTokenCookies(c, result)
	c.Status(http.StatusCreated)
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	err := h.auth.Logout(c, callerID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to logout")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.clearCookie(c, accessTokenCookie)
	h.clearCookie(c, refreshTokenCookie)

	c.Status(http.StatusNoContent)
}

// refresh rotates the session named by the refresh token cookie.
func (h *handlerImpl) refresh(c *gin.Context) (*services.LoginResult, error) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get refresh token cookie")
		return nil, errMandatoryCookieNotFound
	}

	result, err := h.auth.Refresh(c, services.RefreshParams{
		RefreshToken: refreshToken,
		Fingerprint:  generateFingerprint(c),
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to refresh session")
		return nil, err
	}
	return result, nil
}

func refreshError(err error) apiError {
	switch {
	case errors.Is(err, errMandatoryCookieNotFound):
		return newBadRequestError(errMandatoryCookieNotFound.Error())
	case errors.Is(err, services.ErrSessionNotFound):
		return newUnauthorizedError(services.ErrSessionNotFound.Error())
	case errors.Is(err, services.ErrSessionExpired):
		return newUnauthorizedError(services.ErrSessionExpired.Error())
	case errors.Is(err, services.ErrStoreUnavailable):
		return newStatusTextError(http.StatusServiceUnavailable)
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}

func generateFingerprint(c *gin.Context) string {
	// Marshaling a map of strings can't fail.
	fingerprintBytes, _ := json.Marshal(map[string]string{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	return string(fingerprintBytes)
}

func getStringFromContext(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

func (h *handlerImpl) setTokenCookies(c *gin.Context, result *services.LoginResult) {
	now := h.now()
	// httpOnly must be false to allow client-side JavaScript
	// to read the cookie and send it in the Authorization header.
	c.SetCookie(accessTokenCookie, result.AccessToken, maxAge(result.AccessTokenExpiresAt.Sub(now)),
		"/", "", h.opts.SecureCookies, false)
	c.SetCookie(refreshTokenCookie, result.RefreshToken, maxAge(result.RefreshTokenExpiresAt.Sub(now)),
		"/", "", h.opts.SecureCookies, true)
}

func (h *handlerImpl) clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1,
		"/", "", h.opts.SecureCookies, false)
}

func maxAge(ttl time.Duration) int {
	return int(ttl.Seconds())
}
