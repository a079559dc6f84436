package token

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/promptml/promptml/internal/metrics"
)

const issuer = "promptml"

// DefaultTTL bounds how long an issued preview token stays presentable
const DefaultTTL = 15 * time.Minute

// SessionToken is the JWT payload authorizing websocket access to one
// preview session
type SessionToken struct {
	SessionID string `json:"session_id"`
	Snippet   string `json:"snippet"`
	jwt.RegisteredClaims
}

// Service issues and verifies the tokens that authorize websocket preview
// connections. Keys are generated per process, so tokens are only valid
// against the server that issued them. A fresh token may be presented any
// number of times before it expires; reconnects reuse it.
type Service struct {
	signingKey []byte
	algorithm  jwt.SigningMethod
	ttl        time.Duration
	stats      *metrics.Collector
	mu         sync.RWMutex
}

// NewService creates a token service with a fresh random signing key.
// A zero ttl selects DefaultTTL; stats may be nil.
func NewService(ttl time.Duration, stats *metrics.Collector) (*Service, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	signingKey := make([]byte, 32) // 256-bit key for HS256
	if _, err := rand.Read(signingKey); err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	return &Service{
		signingKey: signingKey,
		algorithm:  jwt.SigningMethodHS256,
		ttl:        ttl,
		stats:      stats,
	}, nil
}

// Issue creates a token granting access to the given preview session
func (s *Service) Issue(sessionID, snippet string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	claims := &SessionToken{
		SessionID: sessionID,
		Snippet:   snippet,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   sessionID,
		},
	}

	token := jwt.NewWithClaims(s.algorithm, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if s.stats != nil {
		s.stats.TokenIssued()
	}
	return tokenString, nil
}

// Verify validates a token and returns its payload
func (s *Service) Verify(tokenString string) (*SessionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, err := jwt.ParseWithClaims(tokenString, &SessionToken{}, func(token *jwt.Token) (interface{}, error) {
		// the header's alg is not trusted; only HS256 is accepted
		if token.Method != s.algorithm {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		s.failure()
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionToken)
	if !ok || !token.Valid {
		s.failure()
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.SessionID == "" {
		s.failure()
		return nil, fmt.Errorf("token missing session")
	}

	if s.stats != nil {
		s.stats.TokenVerified()
	}
	return claims, nil
}

// RotateSigningKey replaces the signing key, invalidating every
// outstanding token
func (s *Service) RotateSigningKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newKey := make([]byte, 32)
	if _, err := rand.Read(newKey); err != nil {
		return fmt.Errorf("failed to generate new signing key: %w", err)
	}

	s.signingKey = newKey
	return nil
}

// TTL reports the configured token lifetime
func (s *Service) TTL() time.Duration {
	return s.ttl
}

func (s *Service) failure() {
	if s.stats != nil {
		s.stats.TokenFailure()
	}
}
