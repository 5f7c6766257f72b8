package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/YouWantToPinch/hearth-api/internal/database"
)

const msgInternal = "Internal server error"

func decodePayload[T any](r *http.Request) (T, error) {
	var v T
	err := json.NewDecoder(r.Body).Decode(&v)
	defer r.Body.Close()
	if err != nil {
		return v, fmt.Errorf("failure decoding request payload: %w", err)
	}
	return v, err
}

func makeStatusCodeMsg(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}

type errorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  fieldErrors `json:"errors,omitempty"`
}

// respondWithError logs err in full and sends the caller msg only.
func respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	// prefix the message with a status code message
	errorMessage := makeStatusCodeMsg(code)
	if msg != "" {
		errorMessage += fmt.Sprintf("; %s", msg)
	}
	// add the technical error message, if it exists
	if err != nil {
		errorMessage += fmt.Sprintf(": %s", err.Error())
	}

	if code >= http.StatusInternalServerError {
		slog.Error(errorMessage, slog.Int("status", code), requestIDAttr(w))
	} else {
		slog.Info(errorMessage, slog.Int("status", code), requestIDAttr(w))
	}

	respondWithJSON(w, code, errorResponse{Message: msg})
}

func respondWithValidationErrors(w http.ResponseWriter, msg string, errs fieldErrors) {
	slog.Info(makeStatusCodeMsg(http.StatusBadRequest)+"; "+msg, slog.Any("fields", errs), requestIDAttr(w))
	respondWithJSON(w, http.StatusBadRequest, errorResponse{Message: msg, Errors: errs})
}

// respondWithStoreError maps store failures to 404, 409 or a generic 500.
func respondWithStoreError(w http.ResponseWriter, resource string, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondWithError(w, http.StatusNotFound, resource+" not found", err)
	case errors.Is(err, database.ErrConflict):
		respondWithError(w, http.StatusConflict, resource+" already exists", err)
	default:
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("could not marshal JSON for response: " + err.Error())
		w.WriteHeader(500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(data)
	if err != nil {
		slog.Error("could not write JSON payload to response: " + err.Error())
	}
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondWithMessage(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, messageResponse{Success: true, Message: msg})
}

// parseIDFromPath reads a positive integer path parameter.
func parseIDFromPath(pathParam string, r *http.Request) (int64, error) {
	raw := r.PathValue(pathParam)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("value '%s' for path parameter '%s' is not a valid id", raw, pathParam)
	}
	return id, nil
}

// Try to parse input query parameter; store time.Time{} into 'parse' when absent
func parseDateFromQuery(queryParam string, r *http.Request, parse *time.Time) error {
	dateString := r.URL.Query().Get(queryParam)
	err := parseDate(dateString, parse)
	if err != nil {
		return fmt.Errorf("invalid query parameter value '%s': %w", queryParam, err)
	}
	return nil
}

// Try to parse input dateString according to available time layouts.
// Store time.Time{} into 'parse' on failure.
func parseDate(dateString string, parse *time.Time) error {
	if dateString == "" {
		*parse = time.Time{}
		return nil
	}

	timeLayouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, layout := range timeLayouts {
		parsedDate, err := time.Parse(layout, dateString)
		if err == nil {
			*parse = parsedDate.UTC()
			return nil
		}
	}

	*parse = time.Time{}
	return fmt.Errorf("value '%s' could not be parsed as DATE", dateString)
}

func parseBoolFromString(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errors.New("provided value could not be parsed; must be 'true' or 'false'")
	}
}

// parseIntFromQuery reads an integer query parameter. ok is false when the
// parameter is absent.
func parseIntFromQuery(queryParam string, r *http.Request) (v int, ok bool, err error) {
	raw := r.URL.Query().Get(queryParam)
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("invalid query parameter value '%s': must be an integer", queryParam)
	}
	return v, true, nil
}
