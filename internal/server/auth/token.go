// Package auth implements stateless bearer authentication: HS256 token
// issuing and validation, the request authentication gate, the identity
// carried in context.Context and the ownership policy for user resources.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

// TokenService issues and validates HS256 tokens carrying the username as
// subject. It is immutable after construction and safe for concurrent use.
//
// Expiry has no leeway: a token is valid while now < exp. Claims use
// one-second precision.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*TokenService)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService returns a TokenService signing with secret. ttl must be
// at least one second so that exp is always after iat.
func NewTokenService(secret []byte, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	if ttl < time.Second {
		return nil, fmt.Errorf("token ttl must be at least 1s, got %s", ttl)
	}

	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
		// expiry is checked by hand against s.now; strict decoding rejects
		// segments with non-zero trailing bits
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for user with sub=username, iat=now, exp=now+ttl.
func (s *TokenService) Issue(user *models.User) (string, error) {
	if user == nil || user.UserName == "" {
		return "", errors.New("cannot issue token without username")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.UserName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ExtractSubject returns the sub claim without checking the signature.
// The result must only be used to look up the candidate principal.
func (s *TokenService) ExtractSubject(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := s.parser.ParseUnverified(tokenString, claims); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", common.ErrMalformedToken)
	}
	return claims.Subject, nil
}

// Verify checks signature, subject and expiry of tokenString against user
// and reports the first failure as one of common.ErrMalformedToken,
// common.ErrSignatureInvalid, common.ErrSubjectMismatch or
// common.ErrTokenExpired.
func (s *TokenService) Verify(tokenString string, user *models.User) error {
	claims := &jwt.RegisteredClaims{}

	_, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
		}
		// bad signature, disallowed alg, unverifiable
		return fmt.Errorf("%w: %v", common.ErrSignatureInvalid, err)
	}

	if user == nil || claims.Subject != user.UserName {
		return common.ErrSubjectMismatch
	}

	if claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return common.ErrTokenExpired
	}

	return nil
}

// Validate is the boolean form of Verify.
func (s *TokenService) Validate(tokenString string, user *models.User) bool {
	return s.Verify(tokenString, user) == nil
}
