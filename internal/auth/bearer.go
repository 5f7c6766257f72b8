package auth

import (
	"errors"
	"net/http"
	"strings"
)

var ErrNoToken = errors.New("no bearer token supplied")

// GetBearerToken reads "Authorization: Bearer <token>". A missing header,
// any other scheme, or an empty token all count as no token.
func GetBearerToken(headers http.Header) (string, error) {
	authHeaderVal := headers.Get("Authorization")
	if authHeaderVal == "" {
		return "", ErrNoToken
	}
	scheme, token, found := strings.Cut(authHeaderVal, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", ErrNoToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
