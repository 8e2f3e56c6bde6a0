package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateAccessToken("admin-1", RoleHospitalAdmin, time.Minute)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, RoleHospitalAdmin, claims.Role)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	InitJWT("test-secret")

	expired, err := GenerateAccessToken("admin-1", RoleSuperAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateAccessToken(expired)
	assert.Error(t, err)

	badRole, err := GenerateAccessToken("admin-1", "janitor", time.Minute)
	require.NoError(t, err)
	_, err = ValidateAccessToken(badRole)
	assert.Error(t, err)

	InitJWT("other-secret")
	good, _ := GenerateAccessToken("admin-1", RoleSuperAdmin, time.Minute)
	InitJWT("test-secret")
	_, err = ValidateAccessToken(good)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := hashPasswordCost("s3cret!", 4)
	require.NoError(t, err)
	assert.True(t, ComparePassword(hash, "s3cret!"))
	assert.False(t, ComparePassword(hash, "wrong"))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	a := GenerateTemporaryPassword()
	b := GenerateTemporaryPassword()
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
