package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/id"
)

const (
	tokenIssuer   = "vivilio-server"
	tokenAudience = "vivilio-client"
)

// Claims are the decrypted contents of an access token.
type Claims struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Subject    string    `json:"sub"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// AccessToken is an issued bearer token.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenService issues and verifies PASETO v4.local access tokens. The claims
// are encrypted, so clients cannot read or forge them without the key.
type TokenService struct {
	key      paseto.V4SymmetricKey
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, lifetime time.Duration) (*TokenService, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("token key must be %d bytes, got %d", keySize, len(key))
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", lifetime)
	}

	sk, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO key: %w", err)
	}
	return &TokenService{key: sk, lifetime: lifetime, now: time.Now}, nil
}

// Issue creates an access token for user.
func (s *TokenService) Issue(user *domain.User) (AccessToken, error) {
	now := s.now()
	expires := now.Add(s.lifetime)

	jti, err := id.Generate(id.Token)
	if err != nil {
		return AccessToken{}, fmt.Errorf("generate token id: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(user.ID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(jti)
	//nolint:errcheck // Set only fails for values that cannot be marshalled
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // see above
	_ = token.Set("email", user.Email)

	return AccessToken{Value: token.V4Encrypt(s.key, nil), ExpiresAt: expires}, nil
}

// Verify decrypts tokenString and checks issuer, audience and validity window.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	return &claims, nil
}

// Lifetime returns the configured access token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}
