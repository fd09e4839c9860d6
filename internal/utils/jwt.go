package utils

import (
	"errors"
	"strconv"
	"time"

	"iprofit/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "iprofit-api"

var ErrInvalidToken = errors.New("invalid token claims")

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("JWT secrets not configured")
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// GenerateTokens generates an access token and a refresh token for the given claims.
func (t *TokenIssuer) GenerateTokens(claims *models.UserClaims) (accessToken string, refreshToken string, err error) {
	now := t.now()

	accessClaims := t.claimsFor(claims, now, t.accessTTL)
	accessClaims.Permissions = claims.Permissions
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(t.accessSecret)
	if err != nil {
		return "", "", err
	}

	// Refresh tokens carry no permissions; they are reloaded on refresh.
	refreshClaims := t.claimsFor(claims, now, t.refreshTTL)
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(t.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (t *TokenIssuer) claimsFor(claims *models.UserClaims, now time.Time, ttl time.Duration) models.UserClaims {
	return models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   claims.SubjectType + ":" + strconv.FormatUint(uint64(claims.UserID), 10),
		},
		UserID:       claims.UserID,
		Email:        claims.Email,
		Role:         claims.Role,
		SubjectType:  claims.SubjectType,
		TokenVersion: claims.TokenVersion,
	}
}

// ParseAccessToken validates an access token.
func (t *TokenIssuer) ParseAccessToken(tokenStr string) (*models.UserClaims, error) {
	return parse(tokenStr, t.accessSecret)
}

// ParseRefreshToken validates a refresh token.
func (t *TokenIssuer) ParseRefreshToken(tokenStr string) (*models.UserClaims, error) {
	return parse(tokenStr, t.refreshSecret)
}

func parse(tokenStr string, secret []byte) (*models.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AccessTTL is the lifetime of access tokens.
func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}
