package api

import (
	"net/http"
)

// handleGetTotalUserCount is only served on the dev platform.
func (cfg *APIConfig) handleGetTotalUserCount(w http.ResponseWriter, r *http.Request) {
	if cfg.platform != "dev" {
		respondWithError(w, http.StatusForbidden, "Only available on the dev platform", nil)
		return
	}

	count, err := cfg.store.CountUsers(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}

	type rspSchema struct {
		Success bool  `json:"success"`
		Count   int64 `json:"count"`
	}

	respondWithJSON(w, http.StatusOK, rspSchema{Success: true, Count: count})
}
