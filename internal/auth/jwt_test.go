// File: internal/auth/jwt_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("unit-test-secret")

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateJWT(42, "robloxfan42", secret)
	require.NoError(t, err)

	userID, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestGenerateRejectsZeroUserID(t *testing.T) {
	_, err := GenerateJWT(0, "ghost", secret)
	assert.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, "robloxfan42", secret)
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("some-other-secret"))
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", secret)
	assert.Error(t, err)
}
