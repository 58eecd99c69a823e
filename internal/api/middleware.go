package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reelforge/reelforge/internal/apperror"
	"github.com/reelforge/reelforge/internal/logger"
)

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), requestID)))
	})
}

type claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// requireAdmin guards write endpoints. Reads stay open; token issuance
// belongs to the identity service, this side only validates.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, r, apperror.ErrUnauthorized)
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, r, apperror.ErrUnauthorized)
			return
		}

		var c claims
		token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, r, apperror.Wrap(err, apperror.ErrInvalidToken))
			return
		}

		if !c.Admin {
			writeError(w, r, apperror.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
