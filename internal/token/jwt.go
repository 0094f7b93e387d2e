package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ivolkov/secrethold/internal/model"
)

// Claims represents session token claims. Subject is the account ID, ID (jti)
// is the server-side session ID. The token carries only the display
// projection, never the password hash or the secret.
type Claims struct {
	jwt.RegisteredClaims
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
}

// JWT implements model.TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) model.TokenManager {
	return &JWT{secretKey: secretKey}
}

// Generate signs a session identity into a compact token.
func (j *JWT) Generate(identity model.SessionIdentity, expiresAt time.Time) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AccountID.String(),
			ID:        identity.SessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:  identity.Username,
		AvatarURL: identity.AvatarURL,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Parse verifies tamper-evidence and reconstructs the session identity.
// Any verification failure collapses to model.ErrInvalidToken.
func (j *JWT) Parse(tokenString string) (model.SessionIdentity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil || !token.Valid {
		return model.SessionIdentity{}, model.ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.SessionIdentity{}, model.ErrInvalidToken
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return model.SessionIdentity{}, model.ErrInvalidToken
	}

	return model.SessionIdentity{
		AccountID: accountID,
		SessionID: sessionID,
		Username:  claims.Username,
		AvatarURL: claims.AvatarURL,
	}, nil
}
