package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YouWantToPinch/hearth-api/internal/auth"
	"github.com/YouWantToPinch/hearth-api/internal/database"
)

// ================= MIDDLEWARE ================= //

type ctxKey string

const ctxIdentity ctxKey = "identity"

// Identity is the authenticated caller of a request. Role comes from the
// access token and may lag behind the stored user until the next login.
type Identity struct {
	UserID int64
	Role   string
	User   database.User
}

func (id Identity) IsAdmin() bool { return id.Role == database.RoleAdmin }

// IdentityFromContext returns the identity attached by
// middlewareAuthenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok
}

// middlewareAuthenticate authenticates JSON Web Tokens
// before passing off requests to another handler.
func (cfg *APIConfig) middlewareAuthenticate(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := auth.GetBearerToken(r.Header)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required. Please log in.", err)
			return
		}
		claims, err := cfg.tokens.DecodeAccess(tokenString)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token. Please log in again.", err)
			return
		}

		user, err := cfg.store.GetUserByID(r.Context(), claims.UserID)
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, http.StatusUnauthorized, "User not found. Please log in again.", err)
			return
		}
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, msgInternal, err)
			return
		}
		if !user.IsActive {
			respondWithError(w, http.StatusForbidden, "Your account has been deactivated. Please contact administrator.", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ctxIdentity, Identity{
			UserID: claims.UserID,
			Role:   claims.Role,
			User:   user,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// middlewareRequireAdmin must run after middlewareAuthenticate.
func (cfg *APIConfig) middlewareRequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authentication required. Please log in.", nil)
			return
		}
		if !id.IsAdmin() {
			respondWithError(w, http.StatusForbidden, "Access denied. Admin privileges required.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Requested-With, Accept, Origin, X-Request-ID"
)

// middlewareCORS answers preflight requests itself and decorates every
// other response from an allowed origin.
func (cfg *APIConfig) middlewareCORS(next http.Handler) http.Handler {
	wildcard := slices.Contains(cfg.corsOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (wildcard || slices.Contains(cfg.corsOrigins, origin)) {
			h := w.Header()
			if wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Expose-Headers", "X-Request-ID")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status    int
	requestID string
}

// requestIDAttr returns the request id of w as a log attribute, or an
// empty attribute when w did not pass through middlewareLogRequests.
func requestIDAttr(w http.ResponseWriter) slog.Attr {
	if rec, ok := w.(*statusRecorder); ok && rec.requestID != "" {
		return slog.String("request_id", rec.requestID)
	}
	return slog.Attr{}
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// middlewareLogRequests writes one log line per request.
func (cfg *APIConfig) middlewareLogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK, requestID: requestID}
		next.ServeHTTP(rec, r)

		slog.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", requestID))
	})
}
