package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "bank-wallet/internal/errors"
)

// Claims is the payload of a session token. The subject is the account id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session is what a verified token proves.
type Session struct {
	AccountID uuid.UUID
	Email     string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}

// TokenManager signs and verifies HS256 session tokens. A token is rejected
// until activationDelay has passed since issuance and after ttl has passed.
type TokenManager struct {
	secret          []byte
	ttl             time.Duration
	activationDelay time.Duration
	now             func() time.Time
}

func NewTokenManager(secret string, ttl, activationDelay time.Duration) *TokenManager {
	return &TokenManager{
		secret:          []byte(secret),
		ttl:             ttl,
		activationDelay: activationDelay,
		now:             time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *TokenManager) Issue(accountID uuid.UUID, email string) (string, error) {
	issuedAt := m.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(ceilSecond(issuedAt.Add(m.activationDelay))),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", apperrors.Internal("failed to sign token", err)
	}
	return signed, nil
}

// ceilSecond rounds t up to a whole second. NumericDate truncates to seconds,
// which would otherwise let a token activate before its delay has elapsed.
func ceilSecond(t time.Time) time.Time {
	rounded := t.Truncate(time.Second)
	if rounded.Before(t) {
		rounded = rounded.Add(time.Second)
	}
	return rounded
}

func (m *TokenManager) Verify(tokenString string) (*Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired.WithCause(err)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, apperrors.ErrTokenNotYetValid.WithCause(err)
		default:
			return nil, apperrors.ErrInvalidToken.WithCause(err)
		}
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.WithCause(err)
	}

	session := &Session{
		AccountID: accountID,
		Email:     claims.Email,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.NotBefore != nil {
		session.NotBefore = claims.NotBefore.Time
	}
	session.ExpiresAt = claims.ExpiresAt.Time
	return session, nil
}
