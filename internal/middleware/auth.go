package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"bank-wallet/internal/credentials"
	"bank-wallet/internal/errors"
)

type contextKey string

const accountIDKey contextKey = "account_id"

// TokenVerifier turns a bearer token into the session it proves.
type TokenVerifier interface {
	Verify(token string) (*credentials.Session, error)
}

// ErrorWriter renders an AppError as the response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err *errors.AppError)

// RequireSession rejects requests without a valid bearer token and stores the
// authenticated account id in the request context.
func RequireSession(verifier TokenVerifier, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, r, errors.ErrUnauthorized)
				return
			}

			session, err := verifier.Verify(token)
			if err != nil {
				appErr, ok := err.(*errors.AppError)
				if !ok {
					appErr = errors.ErrInvalidToken.WithCause(err)
				}
				writeError(w, r, appErr)
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, session.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountIDFromContext returns the account id stored by RequireSession.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDKey).(uuid.UUID)
	return id, ok
}

// WithAccountID stores id the same way RequireSession does.
func WithAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
