package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// SecretCost is the bcrypt work factor for file and account passwords.
const SecretCost = 10

// HashSecret returns a salted bcrypt hash of plaintext. Callers decide
// beforehand whether a password was supplied at all.
func HashSecret(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("empty secret")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), SecretCost)
	return string(hash), err
}

// VerifySecret compares plaintext with hash in constant time. A malformed
// hash is a mismatch.
func VerifySecret(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
