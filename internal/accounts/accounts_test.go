package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/internal/accounts"
	"mingle/internal/testsupport"
)

func TestRegisterCreatesUser(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	user, err := accounts.Register(log, db, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.EncryptedPassword)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	user, err := accounts.Register(log, db, "  Bob@Example.COM ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	_, err := accounts.Register(log, db, "carol@example.com", "secret1")
	require.NoError(t, err)

	_, err = accounts.Register(log, db, "carol@example.com", "another1")
	assert.ErrorIs(t, err, accounts.ErrUserExists)

	// Normalization applies before the uniqueness check
	_, err = accounts.Register(log, db, "CAROL@example.com", "another1")
	assert.ErrorIs(t, err, accounts.ErrUserExists)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	_, err := accounts.Register(log, db, "dave@example.com", "1234")
	assert.Error(t, err)
}

func TestRegisterRejectsEmptyEmail(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	_, err := accounts.Register(log, db, "   ", "secret1")
	assert.Error(t, err)
}

func TestAuthenticateSucceedsWithValidCredentials(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	registered, err := accounts.Register(log, db, "erin@example.com", "secret1")
	require.NoError(t, err)

	user, err := accounts.Authenticate(log, db, "erin@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	_, err := accounts.Register(log, db, "frank@example.com", "secret1")
	require.NoError(t, err)

	_, err = accounts.Authenticate(log, db, "frank@example.com", "wrong")
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestAuthenticateRejectsUnknownEmail(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	_, err := accounts.Authenticate(log, db, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	_, err := accounts.Register(log, db, "grace@example.com", "oldpass")
	require.NoError(t, err)

	require.NoError(t, accounts.ChangePassword(log, db, "grace@example.com", "newpass"))

	_, err = accounts.Authenticate(log, db, "grace@example.com", "oldpass")
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)

	_, err = accounts.Authenticate(log, db, "grace@example.com", "newpass")
	assert.NoError(t, err)
}
