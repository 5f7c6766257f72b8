package api

import (
	"net/http"

	"github.com/YouWantToPinch/hearth-api/internal/database"
)

func (cfg *APIConfig) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	dbUsers, err := cfg.store.ListUsers(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}

	users := make([]User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, userFromDB(u))
	}
	respondWithJSON(w, http.StatusOK, newListResponse(users))
}

func (cfg *APIConfig) handleGetUser(w http.ResponseWriter, r *http.Request) {
	pathUserID, err := parseIDFromPath("user_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	dbUser, err := cfg.store.GetUserByID(r.Context(), pathUserID)
	if err != nil {
		respondWithStoreError(w, "User", err)
		return
	}
	respondWithJSON(w, http.StatusOK, itemResponse[User]{Success: true, Data: userFromDB(dbUser)})
}

func (cfg *APIConfig) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	rqPayload, err := decodePayload[userPayload](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if errs := rqPayload.validate(false); errs.any() {
		respondWithValidationErrors(w, msgValidationFailed, errs)
		return
	}

	hash, err := cfg.sessions.Hasher().Hash(*rqPayload.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	params := database.CreateUserParams{
		Name:         *rqPayload.Name,
		Username:     *rqPayload.Username,
		Email:        *rqPayload.Email,
		PasswordHash: hash,
		Role:         database.RoleMember,
		IsActive:     true,
	}
	if rqPayload.Role != nil {
		params.Role = *rqPayload.Role
	}
	if rqPayload.IsActive != nil {
		params.IsActive = *rqPayload.IsActive
	}

	dbUser, err := cfg.store.CreateUser(r.Context(), params)
	if err != nil {
		respondWithStoreError(w, "User", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, itemResponse[User]{
		Success: true,
		Message: "User created successfully",
		Data:    userFromDB(dbUser),
	})
}

func (cfg *APIConfig) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	pathUserID, err := parseIDFromPath("user_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	rqPayload, err := decodePayload[userPayload](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if errs := rqPayload.validate(true); errs.any() {
		respondWithValidationErrors(w, msgValidationFailed, errs)
		return
	}

	params := database.UpdateUserParams{
		ID:       pathUserID,
		Name:     rqPayload.Name,
		Username: rqPayload.Username,
		Email:    rqPayload.Email,
		Role:     rqPayload.Role,
		IsActive: rqPayload.IsActive,
	}
	if rqPayload.Password != nil {
		hash, err := cfg.sessions.Hasher().Hash(*rqPayload.Password)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, msgInternal, err)
			return
		}
		params.PasswordHash = &hash
	}

	dbUser, err := cfg.store.UpdateUser(r.Context(), params)
	if err != nil {
		respondWithStoreError(w, "User", err)
		return
	}
	respondWithJSON(w, http.StatusOK, itemResponse[User]{
		Success: true,
		Message: "User updated successfully",
		Data:    userFromDB(dbUser),
	})
}

func (cfg *APIConfig) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	pathUserID, err := parseIDFromPath("user_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	if err := cfg.store.DeleteUser(r.Context(), pathUserID); err != nil {
		respondWithStoreError(w, "User", err)
		return
	}
	respondWithMessage(w, http.StatusOK, "User deleted successfully")
}
