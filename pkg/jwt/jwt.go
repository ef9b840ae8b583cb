package jwt

import (
	"errors"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/abygeorge8848/VolunteeringPortal/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Roles carried in tokens
const (
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// Token types
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const issuer = "volunteer-portal"

// Claims token payload. UserID is a volunteer id or an admin id depending on Role.
type Claims struct {
	UserID     int64  `json:"user_id"`
	Role       string `json:"role"`
	TokenType  string `json:"token_type"`
	RememberMe bool   `json:"remember_me,omitempty"`
	jwtv5.RegisteredClaims
}

// Manager issues and verifies HS256 tokens
type Manager struct {
	secret                  []byte
	accessTokenTTL          time.Duration
	refreshTokenTTLDefault  time.Duration
	refreshTokenTTLRemember time.Duration
}

// NewManager creates a Manager
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:                  []byte(cfg.JWTSecret),
		accessTokenTTL:          cfg.AccessTokenTTL,
		refreshTokenTTLDefault:  cfg.RefreshTokenTTLDefault,
		refreshTokenTTLRemember: cfg.RefreshTokenTTLRemember,
	}
}

// AccessTokenTTL lifetime of access tokens
func (m *Manager) AccessTokenTTL() time.Duration { return m.accessTokenTTL }

// GenerateAccessToken issues a short-lived access token
func (m *Manager) GenerateAccessToken(userID int64, role string) (string, error) {
	return m.sign(userID, role, TypeAccess, false, m.accessTokenTTL)
}

// GenerateRefreshToken issues a refresh token; rememberMe selects the longer TTL
func (m *Manager) GenerateRefreshToken(userID int64, role string, rememberMe bool) (string, error) {
	ttl := m.refreshTokenTTLDefault
	if rememberMe {
		ttl = m.refreshTokenTTLRemember
	}
	return m.sign(userID, role, TypeRefresh, rememberMe, ttl)
}

func (m *Manager) sign(userID int64, role, tokenType string, rememberMe bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     userID,
		Role:       role,
		TokenType:  tokenType,
		RememberMe: rememberMe,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   role + ":" + strconv.FormatInt(userID, 10),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies signature and expiry
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
