package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-cafe/jobby/internal/authoriser"
	"github.com/golang-cafe/jobby/internal/user"
	"github.com/pkg/errors"
)

type TokenValidator interface {
	Validate(token string) (string, error)
}

type UserFinder interface {
	UserByID(ctx context.Context, id string) (user.User, error)
}

// ErrorLogger reports failures that end in a 500.
type ErrorLogger func(err error, msg string)

type contextKey int

const userContextKey contextKey = iota

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the user resolved by the authentication gate.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userContextKey).(user.User)
	return u, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func authenticate(w http.ResponseWriter, r *http.Request, tokens TokenValidator, users UserFinder, logErr ErrorLogger) (user.User, bool) {
	tk, ok := BearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, message{"Not authorized, no token"})
		return user.User{}, false
	}
	userID, err := tokens.Validate(tk)
	if errors.Is(err, authoriser.ErrTokenExpired) {
		writeJSON(w, http.StatusUnauthorized, message{"Not authorized, token expired"})
		return user.User{}, false
	}
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, message{"Not authorized, token failed"})
		return user.User{}, false
	}
	u, err := users.UserByID(r.Context(), userID)
	if errors.Is(err, user.ErrNotFound) {
		writeJSON(w, http.StatusUnauthorized, message{"Not authorized, user not found"})
		return user.User{}, false
	}
	if err != nil {
		logErr(err, "unable to resolve user for bearer token")
		writeJSON(w, http.StatusInternalServerError, message{"Server Error"})
		return user.User{}, false
	}
	return u, true
}

// UserAuthenticatedMiddleware lets through any request carrying a valid
// bearer token for an existing user, and puts that user in the context.
func UserAuthenticatedMiddleware(tokens TokenValidator, users UserFinder, logErr ErrorLogger, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := authenticate(w, r, tokens, users, logErr)
		if !ok {
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// AdminAuthenticatedMiddleware authenticates first, then requires the
// admin role.
func AdminAuthenticatedMiddleware(tokens TokenValidator, users UserFinder, logErr ErrorLogger, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := authenticate(w, r, tokens, users, logErr)
		if !ok {
			return
		}
		if !u.Role.IsAdmin() {
			writeJSON(w, http.StatusForbidden, message{"Not authorized as an admin"})
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), u)))
	})
}
