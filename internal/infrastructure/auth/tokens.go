package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// Claims is the token payload the service issues and accepts.
type Claims struct {
	UserID  uint
	Subject string
}

type tokenClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 access tokens.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenIssuer(secret string, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), lifetime: lifetime}
}

// Issue signs a token for the given user.
func (t *TokenIssuer) Issue(ctx context.Context, userID uint, subject string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal, "failed to sign token", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry and returns the claims.
func (t *TokenIssuer) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUnauthorized, "invalid token", err)
	}
	return &Claims{UserID: claims.UserID, Subject: claims.Subject}, nil
}

// DecodeUnverified extracts claims without checking the signature. The rate
// limiter uses it to key counters by user before authentication runs; it must
// never be used to grant access.
func DecodeUnverified(tokenString string) (*Claims, bool) {
	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return nil, false
	}
	if claims.UserID == 0 {
		return nil, false
	}
	return &Claims{UserID: claims.UserID, Subject: claims.Subject}, true
}
