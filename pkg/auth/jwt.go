package auth

import (
	"time"

	"socialboost-core/pkg/config"
	"socialboost-core/pkg/errutil"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
)

var Module = fx.Module("auth", fx.Provide(NewManager))

// Claims carries the session identity inside the signed token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role"`
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(cfg *config.Config) *Manager {
	ttl := cfg.Session.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(cfg.Session.Secret), ttl: ttl}
}

func (m *Manager) Issue(userID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errutil.Unauthorized("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, errutil.Unauthorized("invalid or expired session", errutil.WithErr(err))
	}

	if !token.Valid {
		return nil, errutil.Unauthorized("invalid session token")
	}

	return claims, nil
}
