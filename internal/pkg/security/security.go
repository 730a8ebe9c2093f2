// Package security hashes and verifies operator passwords with bcrypt.
package security

import (
	"log"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password. Hashing errors are
// logged and yield an empty hash, which never verifies.
func HashPassword(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Print(err.Error())
	}
	return string(hash)
}

// CheckPassword compares a bcrypt hashed password with its possible plaintext equivalent.
// It returns nil on success, or bcrypt.ErrMismatchedHashAndPassword when they differ.
func CheckPassword(hashedPassword, userPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(userPassword))
}
