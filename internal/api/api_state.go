package api

import (
	"net/http"
)

func (cfg *APIConfig) handleHealth(w http.ResponseWriter, r *http.Request) {
	type rspSchema struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	if err := cfg.store.Ping(r.Context()); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	respondWithJSON(w, http.StatusOK, rspSchema{Status: "OK", Message: "Server is running"})
}
