package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type CustomClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies staff tokens and remembers logged-out
// tokens until they would have expired anyway.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string

	blacklistMutex    sync.RWMutex
	blacklistedTokens map[string]time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{
		secret:            []byte(secret),
		ttl:               ttl,
		issuer:            "BilliardPOS",
		blacklistedTokens: make(map[string]time.Time),
	}
}

func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

func (tm *TokenManager) GenerateToken(userID uint, role string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tm.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) ParseToken(tokenString string) (*CustomClaims, error) {
	if tm.IsTokenBlacklisted(tokenString) {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func (tm *TokenManager) BlacklistToken(token string) {
	tm.blacklistMutex.Lock()
	defer tm.blacklistMutex.Unlock()

	now := time.Now()
	for t, expiry := range tm.blacklistedTokens {
		if now.After(expiry) {
			delete(tm.blacklistedTokens, t)
		}
	}
	tm.blacklistedTokens[token] = now.Add(tm.ttl)
}

func (tm *TokenManager) IsTokenBlacklisted(token string) bool {
	tm.blacklistMutex.RLock()
	defer tm.blacklistMutex.RUnlock()

	expiry, exists := tm.blacklistedTokens[token]
	return exists && time.Now().Before(expiry)
}
