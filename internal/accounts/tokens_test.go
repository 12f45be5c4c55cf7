package accounts_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/internal/accounts"
)

const tokenSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := accounts.IssueToken(tokenSecret, 42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := accounts.ParseToken(tokenSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := accounts.IssueToken(tokenSecret, 42, time.Hour)
	require.NoError(t, err)

	_, err = accounts.ParseToken("other-secret", token)
	assert.ErrorIs(t, err, accounts.ErrInvalidToken)
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	token, err := accounts.IssueToken(tokenSecret, 42, -time.Minute)
	require.NoError(t, err)

	_, err = accounts.ParseToken(tokenSecret, token)
	assert.ErrorIs(t, err, accounts.ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := accounts.ParseToken(tokenSecret, "not-a-token")
	assert.ErrorIs(t, err, accounts.ErrInvalidToken)
}
