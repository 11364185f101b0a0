// Package middleware provides HTTP middleware for authenticating API callers.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// callerIDKey is the context key for storing the authenticated caller ID.
const callerIDKey ContextKey = "callerID"

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (CallerIDGetter, error)
}

// CallerIDGetter is an interface for extracting the caller ID from token claims.
type CallerIDGetter interface {
	GetCallerID() uuid.UUID
}

// AuthMiddleware creates middleware that validates bearer tokens and adds
// the caller ID to the request context.
func AuthMiddleware(jwtService TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimSpace(parts[1])
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerIDKey, claims.GetCallerID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCallerID extracts the authenticated caller ID from the request context.
func GetCallerID(r *http.Request) (uuid.UUID, error) {
	callerID, ok := r.Context().Value(callerIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("caller ID not found in request context")
	}
	return callerID, nil
}
