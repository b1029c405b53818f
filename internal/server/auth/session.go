// Package auth issues and verifies stateless session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the iss claim stamped on every session token.
const Issuer = "insightdesk"

// Claims is the session claim set: registered claims (sub, iat, exp, iss)
// plus the display name and email so protected routes need no store lookup.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// SessionIssuer signs and verifies HS256 session tokens with a key that is
// fixed for the lifetime of the process.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer copies secret so later mutation by the caller has no effect.
func NewSessionIssuer(secret []byte, ttl time.Duration) (*SessionIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &SessionIssuer{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the configured session lifetime.
func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

// Issue returns a signed token for account and its expiry time.
func (s *SessionIssuer) Issue(account *models.Account) (string, time.Time, error) {
	if account == nil || account.ID == "" {
		return "", time.Time{}, fmt.Errorf("%w: account without id", common.ErrorInternal)
	}

	now := s.now()
	exp := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Name:  account.Name,
		Email: account.Email,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, exp, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// account described by its claims. Expired tokens yield common.ErrTokenExpired;
// every other failure yields common.ErrInvalidToken.
func (s *SessionIssuer) Verify(tokenString string) (*models.Account, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	return &models.Account{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

// ExpiresAt returns the exp claim of a token that passes Verify.
func (s *SessionIssuer) ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

func (s *SessionIssuer) parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
