package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "tasktracker/internal/errors"
)

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies stateless HS256 bearer tokens. Verification
// depends only on the token, the secret and the clock.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewTokenService creates a token service with the given secret and default time-to-live.
func NewTokenService(secret string, defaultTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        time.Now,
		// Expiry is checked against s.now instead of the package clock.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// DefaultTTL is the lifetime of tokens issued by IssueDefault.
func (s *TokenService) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Issue signs a token for subject that expires ttl from now.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: token subject is empty", apperrors.ErrValidation)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: token ttl must be positive", apperrors.ErrValidation)
	}

	// NumericDate has second precision; truncating here keeps exp-iat == ttl.
	issuedAt := s.now().Truncate(time.Second)
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueDefault signs a token for subject with the configured default TTL.
func (s *TokenService) IssueDefault(subject string) (string, error) {
	return s.Issue(subject, s.defaultTTL)
}

// Verify checks structure and signature, then expiry. It fails with
// ErrInvalidToken or ErrTokenExpired.
func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing registered claims", apperrors.ErrInvalidToken)
	}

	if s.now().After(claims.ExpiresAt.Time) {
		return nil, apperrors.ErrTokenExpired
	}

	return &TokenClaims{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// ValidateForSubject reports whether token verifies and names expected as its subject.
func (s *TokenService) ValidateForSubject(tokenString, expected string) bool {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject == expected
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return s.secret, nil
}
