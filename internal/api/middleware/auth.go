package middleware

import (
	"context"
	"errors"
	"net/http"

	"coursehub/internal/common"
	"coursehub/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const UserIDCtxKey contextKey = "userID"

// Authenticator rejects requests without a valid bearer token and puts the
// principal on the context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := principalFromToken(r)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// OptionalAuthenticator lets anonymous requests through but still rejects a
// token that is present and invalid.
func OptionalAuthenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := principalFromToken(r)
		if errors.Is(err, jwtauth.ErrNoTokenFound) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func principalFromToken(r *http.Request) (int64, error) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		if errors.Is(err, jwtauth.ErrNoTokenFound) {
			return 0, err
		}
		return 0, errors.New("Invalid token: " + err.Error())
	}
	if token == nil {
		return 0, jwtauth.ErrNoTokenFound
	}
	userID, err := security.GetUserIDFromClaims(claims)
	if err != nil {
		return 0, errors.New("Invalid token claims: " + err.Error())
	}
	return userID, nil
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

// GetUserIDFromContext returns the authenticated principal, if any.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok && userID > 0
}
