package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oakmart/storefront-api/internal/auth"
	"github.com/oakmart/storefront-api/internal/platform/identifier"
)

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"max=120"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	AccessToken      string      `json:"access_token"`
	RefreshToken     string      `json:"refresh_token"`
	AccessExpiresAt  time.Time   `json:"access_expires_at"`
	RefreshExpiresAt time.Time   `json:"refresh_expires_at"`
	User             authUserDTO `json:"user"`
}

type authUserDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        auth.Role `json:"role"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAuthUserDTO(user auth.User) authUserDTO {
	return authUserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
	}
}

func (a *api) issueTokensForUser(ctx context.Context, user auth.User) (authResponse, error) {
	sessionID := identifier.New("ses")
	pair, err := a.tokens.IssueTokenPair(user, sessionID)
	if err != nil {
		return authResponse{}, err
	}

	err = a.sessions.Save(ctx, auth.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashToken(pair.RefreshToken),
		ExpiresAt:        pair.RefreshExpiresAt,
	})
	if err != nil {
		return authResponse{}, err
	}

	return authResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		User:             toAuthUserDTO(user),
	}, nil
}

func (a *api) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailInUse):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		default:
			writeError(w, http.StatusBadRequest, "registration failed")
		}
		return
	}

	response, err := a.issueTokensForUser(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.Authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	response, err := a.issueTokensForUser(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// handleAuthRefresh rotates the refresh session: the presented token must
// hash-match the stored session, which is destroyed before a new pair is
// issued. A replayed refresh token therefore fails after first use.
func (a *api) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rawToken := strings.TrimSpace(req.RefreshToken)
	claims, err := a.tokens.ParseAndValidate(rawToken, auth.TokenTypeRefresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	session, exists, err := a.sessions.Get(r.Context(), claims.SessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}
	if !exists || session.UserID != claims.UserID {
		writeError(w, http.StatusUnauthorized, "invalid refresh session")
		return
	}
	if session.RefreshTokenHash != auth.HashToken(rawToken) {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, exists := a.users.GetUserByID(claims.UserID)
	if !exists {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}

	if err := a.sessions.Delete(r.Context(), session.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "session rotation failed")
		return
	}

	response, err := a.issueTokensForUser(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (a *api) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req refreshRequest
	if err := decodeJSON(r, &req); err == nil && strings.TrimSpace(req.RefreshToken) != "" {
		if claims, parseErr := a.tokens.ParseAndValidate(strings.TrimSpace(req.RefreshToken), auth.TokenTypeRefresh); parseErr == nil {
			_ = a.sessions.Delete(r.Context(), claims.SessionID)
			writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
			return
		}
	}

	_ = a.sessions.Delete(r.Context(), identity.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (a *api) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, exists := a.users.GetUserByID(identity.UserID)
	if !exists {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, toAuthUserDTO(user))
}
