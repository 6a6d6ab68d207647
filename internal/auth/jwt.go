package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/calebwils/Smart-Juris/internal/store"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the whole session user; nothing about users is stored
// server side.
type Claims struct {
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Role         store.UserRole         `json:"role"`
	Subscription store.SubscriptionPlan `json:"plan"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and checks HS256 session tokens. Tokens ended by Revoke
// are refused until they would have expired anyway.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now, revoked: make(map[string]time.Time)}
}

func (i *TokenIssuer) Issue(user *store.User) (string, error) {
	now := i.now()
	claims := Claims{
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Subscription: user.Subscription,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse returns the user a valid token was issued for.
func (i *TokenIssuer) Parse(tokenString string) (*store.User, error) {
	claims, err := i.claims(tokenString)
	if err != nil {
		return nil, err
	}
	i.mu.Lock()
	_, revoked := i.revoked[claims.ID]
	i.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}

	return &store.User{
		ID:           claims.Subject,
		Name:         claims.Name,
		Email:        claims.Email,
		Role:         claims.Role,
		Subscription: claims.Subscription,
	}, nil
}

// Revoke ends the session a valid token belongs to.
func (i *TokenIssuer) Revoke(tokenString string) error {
	claims, err := i.claims(tokenString)
	if err != nil {
		return err
	}

	now := i.now()
	i.mu.Lock()
	defer i.mu.Unlock()
	for id, exp := range i.revoked {
		if !exp.After(now) {
			delete(i.revoked, id)
		}
	}
	i.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

func (i *TokenIssuer) claims(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
