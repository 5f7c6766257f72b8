package api

import (
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/YouWantToPinch/hearth-api/internal/auth"
	"github.com/YouWantToPinch/hearth-api/internal/session"
)

const msgValidationFailed = "Validation failed"

type authRspSchema struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (cfg *APIConfig) handleRegister(w http.ResponseWriter, r *http.Request) {
	rqPayload, err := decodePayload[userPayload](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if errs := rqPayload.validate(false); errs.any() {
		respondWithValidationErrors(w, msgValidationFailed, errs)
		return
	}

	params := session.RegisterParams{
		Name:     *rqPayload.Name,
		Username: *rqPayload.Username,
		Email:    *rqPayload.Email,
		Password: *rqPayload.Password,
	}
	if rqPayload.Role != nil {
		params.Role = *rqPayload.Role
	}

	tokens, user, err := cfg.sessions.Register(r.Context(), params)
	if err != nil {
		respondWithStoreError(w, "User", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, authRspSchema{
		Success:      true,
		Message:      "User registered successfully",
		User:         userFromDB(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (cfg *APIConfig) handleLogin(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		Password string `json:"password"`
		Username string `json:"username"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if rqPayload.Username == "" || rqPayload.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Please provide username and password", nil)
		return
	}

	tokens, user, err := cfg.sessions.Login(r.Context(), rqPayload.Username, rqPayload.Password)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials", err)
		return
	case errors.Is(err, session.ErrAccountDisabled):
		respondWithError(w, http.StatusForbidden, "Your account has been deactivated", err)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}

	respondWithJSON(w, http.StatusOK, authRspSchema{
		Success:      true,
		Message:      "Login successful",
		User:         userFromDB(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// handleRefresh reads the refresh token from the body and falls back to
// the Authorization header.
func (cfg *APIConfig) handleRefresh(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		RefreshToken string `json:"refreshToken"`
	}
	type rspSchema struct {
		Success     bool   `json:"success"`
		AccessToken string `json:"accessToken"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	refreshToken := rqPayload.RefreshToken
	if refreshToken == "" {
		refreshToken, _ = auth.GetBearerToken(r.Header)
	}
	if refreshToken == "" {
		respondWithError(w, http.StatusBadRequest, "Refresh token required", nil)
		return
	}

	accessToken, err := cfg.sessions.Refresh(r.Context(), refreshToken)
	switch {
	case errors.Is(err, session.ErrInvalidRefreshToken):
		respondWithError(w, http.StatusUnauthorized, "Invalid refresh token", err)
		return
	case errors.Is(err, session.ErrAccountDisabled):
		respondWithError(w, http.StatusForbidden, "Your account has been deactivated", err)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}

	respondWithJSON(w, http.StatusOK, rspSchema{Success: true, AccessToken: accessToken})
}

func (cfg *APIConfig) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	if err := cfg.sessions.Logout(r.Context(), id.UserID); err != nil {
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "Logged out successfully")
}

func (cfg *APIConfig) handleMe(w http.ResponseWriter, r *http.Request) {
	type rspSchema struct {
		Success bool `json:"success"`
		User    User `json:"user"`
	}

	id, _ := IdentityFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, rspSchema{Success: true, User: userFromDB(id.User)})
}

func (cfg *APIConfig) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if rqPayload.CurrentPassword == "" || rqPayload.NewPassword == "" {
		respondWithError(w, http.StatusBadRequest, "Please provide current and new password", nil)
		return
	}
	if n := utf8.RuneCountInString(rqPayload.NewPassword); n < 6 || n > 100 {
		errs := fieldErrors{}
		errs.add("newPassword", "The newPassword field must be between 6 and 100 characters.")
		respondWithValidationErrors(w, msgValidationFailed, errs)
		return
	}

	id, _ := IdentityFromContext(r.Context())
	err = cfg.sessions.ChangePassword(r.Context(), id.User, rqPayload.CurrentPassword, rqPayload.NewPassword)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Current password is incorrect", err)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "Password updated successfully")
}
