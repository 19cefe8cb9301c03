package http

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ugc-marketplace-backend/internal/config"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/security"
	"ugc-marketplace-backend/internal/service"
)

const wsRoute = "/ws/notifications"

// AuthMiddleware enforces config.EndpointSecurityConfig for the matched route.
type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		template := routeTemplate(r)
		level := config.GetSecurityLevel(r.Method + " " + template)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r, template == wsRoute)
		if token == "" {
			writeError(w, r, service.ErrUnauthenticated)
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			logger.DebugContext(r.Context(), "Token rejected", "path", r.URL.Path, "error", err)
			writeError(w, r, service.ErrInvalidToken)
			return
		}

		if !levelAccepts(level, claims.Type) {
			writeError(w, r, service.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims, token)))
	})
}

func levelAccepts(level config.SecurityLevel, typ security.TokenType) bool {
	switch level {
	case config.SecurityRefresh:
		return typ == security.TokenTypeRefresh
	case config.SecurityAccess:
		return typ == security.TokenTypeAccess
	}
	return false
}

// extractToken reads a bearer token; browsers cannot set headers on websocket upgrades,
// so that route also accepts ?token=.
func extractToken(r *http.Request, allowQuery bool) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if header != "" {
		return strings.TrimSpace(header)
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// LoggingMiddleware logs every request with its status and latency.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.HTTPRequest(r.Method, r.URL.Path, rec.status, time.Since(start), "route", routeTemplate(r))
	})
}

// RecoveryMiddleware turns handler panics into 500 responses.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.ErrorContext(r.Context(), "Handler panic", "method", r.Method, "path", r.URL.Path, "panic", p)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{Code: "internal", Message: msgInternal}})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
