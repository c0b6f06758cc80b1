package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

// StateTTL bounds how long a user may sit on the provider's consent screen.
const StateTTL = 10 * time.Minute

type stateClaims struct {
	Provider string `json:"prv"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// JWTStateSigner signs the OAuth state as a short-lived HS256 token. The
// nonce inside it must also come back in a cookie, binding the callback to
// the browser that started the flow.
type JWTStateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTStateSigner(secret string, ttl time.Duration) *JWTStateSigner {
	if ttl <= 0 {
		ttl = StateTTL
	}
	return &JWTStateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *JWTStateSigner) Issue(provider string) (string, string, error) {
	nonce, err := randomHex(16)
	if err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}
	now := s.now()
	claims := stateClaims{
		Provider: provider,
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign state: %w", err)
	}
	return state, nonce, nil
}

func (s *JWTStateSigner) Verify(state, provider, nonce string) error {
	if state == "" || nonce == "" {
		return port.ErrInvalidState
	}
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", port.ErrInvalidState, err)
	}
	if claims.Provider != provider {
		return fmt.Errorf("%w: issued for %q", port.ErrInvalidState, claims.Provider)
	}
	if subtle.ConstantTimeCompare([]byte(claims.Nonce), []byte(nonce)) != 1 {
		return fmt.Errorf("%w: nonce mismatch", port.ErrInvalidState)
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
