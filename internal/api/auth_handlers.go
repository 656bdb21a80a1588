package api

import (
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/user"
	"go.uber.org/zap"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
	refreshCookiePath  = "/api/auth/refresh"
)

var (
	errNoRefreshToken      = apperr.Unauthorized("No refresh token")
	errInvalidRefreshToken = apperr.Unauthorized("Invalid refresh token")
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.issueTokens(w, r, u); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Registration successful", u)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.issueTokens(w, r, u); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Login successful", u)
}

// Logout revokes the stored refresh token and always clears the cookies.
// The refresh cookie is scoped to the refresh path, so the user is usually
// identified by the access token instead.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := h.sessionOwner(r); ok {
		if err := h.sessions.Revoke(r.Context(), userID); err != nil {
			h.logger.Warn("failed to revoke session", zap.String("user_id", userID), zap.Error(err))
		}
	}

	h.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, "Logout successful", nil)
}

func (h *Handlers) sessionOwner(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		if claims, err := h.jwtService.ValidateRefreshToken(cookie.Value); err == nil {
			return claims.Subject, true
		}
	}
	if token := middleware.ExtractToken(r); token != "" {
		if claims, err := h.jwtService.ValidateAccessToken(token); err == nil {
			return claims.UserID, true
		}
	}
	return "", false
}

// Refresh issues a new access token when the refresh cookie matches the
// token id stored for the user.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil {
		h.fail(w, r, errNoRefreshToken)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(cookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		h.fail(w, r, errInvalidRefreshToken)
		return
	}

	ok, err := h.sessions.Valid(r.Context(), claims.Subject, claims.ID)
	if err != nil {
		h.fail(w, r, apperr.Internal("session lookup failed", err))
		return
	}
	if !ok {
		h.clearAuthCookies(w)
		h.fail(w, r, errInvalidRefreshToken)
		return
	}

	u, err := h.users.Get(r.Context(), claims.Subject)
	if err != nil {
		h.clearAuthCookies(w)
		h.fail(w, r, err)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		h.fail(w, r, apperr.Internal("failed to sign token", err))
		return
	}
	h.setCookie(w, r, accessTokenCookie, token, "/", expiresAt)
	respondJSON(w, http.StatusOK, "Token refreshed", nil)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "User retrieved successfully", u)
}

func (h *Handlers) issueTokens(w http.ResponseWriter, r *http.Request, u *user.User) error {
	access, accessExpiry, err := h.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return apperr.Internal("failed to sign token", err)
	}
	refresh, tokenID, refreshExpiry, err := h.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return apperr.Internal("failed to sign token", err)
	}
	if err := h.sessions.Save(r.Context(), u.ID, tokenID, h.jwtService.RefreshTokenExpiry()); err != nil {
		return apperr.Internal("failed to store session", err)
	}

	h.setCookie(w, r, accessTokenCookie, access, "/", accessExpiry)
	h.setCookie(w, r, refreshTokenCookie, refresh, refreshCookiePath, refreshExpiry)
	return nil
}

func (h *Handlers) setCookie(w http.ResponseWriter, r *http.Request, name, value, path string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
	})
}
