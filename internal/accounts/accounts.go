// Package accounts holds the user identity records and token issuance.
package accounts

import (
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/crypto"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// User is the identity record behind every caller id.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string    `json:"-"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ErrUserExists is returned when attempting to register an email that is taken.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when a user lookup fails.
var ErrUserNotFound = gorm.ErrRecordNotFound

// ErrInvalidCredentials is returned when login fails; it deliberately does not
// distinguish a missing account from a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// FindByEmail retrieves a user by email.
func FindByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID retrieves a user by ID.
func FindByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new user with the supplied credentials. It returns
// ErrUserExists when the email is already registered - the unique index on
// email backs the check against concurrent registrations.
func Register(logger *slog.Logger, dbConn *gorm.DB, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	if len(password) < 5 {
		return nil, errors.New("password must be at least 5 characters")
	}

	if _, err := FindByEmail(dbConn, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := crypto.GeneratePasswordHash(password)
	if err != nil {
		return nil, err
	}

	newUser := User{
		Email:             email,
		EncryptedPassword: string(hashedPassword),
	}

	err = sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			if isUniqueViolation(err) { // lost the race after the pre-check
				return ErrUserExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &newUser, nil
}

// Authenticate verifies email/password and returns the matching user.
// A dummy hash is verified when the account does not exist so response time
// does not reveal whether the email is registered.
func Authenticate(logger *slog.Logger, dbConn *gorm.DB, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := FindByEmail(dbConn, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("User not found during login", slog.String("email", email))
			dummyHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // bcrypt hash of "dummy"
			crypto.VerifyPassword(dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.VerifyPassword(user.EncryptedPassword, password) {
		logger.Debug("Invalid password attempt", slog.String("email", email))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword updates a user's password given their email.
func ChangePassword(logger *slog.Logger, dbConn *gorm.DB, email, password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	user, err := FindByEmail(dbConn, email)
	if err != nil {
		return err
	}

	hashedPassword, err := crypto.GeneratePasswordHash(password)
	if err != nil {
		return err
	}

	return sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Model(user).Update("encrypted_password", string(hashedPassword)).Error
	})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") || strings.Contains(s, "unique constraint")
}
