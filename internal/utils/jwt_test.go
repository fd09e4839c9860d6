package utils

import (
	"testing"
	"time"

	"iprofit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("access", "refresh", time.Minute, time.Hour)
	require.NoError(t, err)

	claims := &models.UserClaims{
		UserID:       42,
		Email:        "admin@iprofit.test",
		Role:         models.RoleAdmin,
		SubjectType:  models.SubjectAdmin,
		Permissions:  []string{models.PermissionUsersRead},
		TokenVersion: 3,
	}
	access, refresh, err := issuer.GenerateTokens(claims)
	require.NoError(t, err)

	parsed, err := issuer.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, models.SubjectAdmin, parsed.SubjectType)
	assert.Equal(t, []string{models.PermissionUsersRead}, parsed.Permissions)
	assert.Equal(t, 3, parsed.TokenVersion)

	refreshed, err := issuer.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Empty(t, refreshed.Permissions)

	_, err = issuer.ParseAccessToken(refresh)
	assert.Error(t, err, "refresh token must not verify as an access token")
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer, err := NewTokenIssuer("access", "refresh", time.Minute, time.Hour)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	access, _, err := issuer.GenerateTokens(&models.UserClaims{UserID: 1, SubjectType: models.SubjectUser})
	require.NoError(t, err)

	_, err = issuer.ParseAccessToken(access)
	assert.Error(t, err)
}

func TestNewTokenIssuer_RequiresSecrets(t *testing.T) {
	_, err := NewTokenIssuer("", "refresh", time.Minute, time.Hour)
	assert.Error(t, err)
}
