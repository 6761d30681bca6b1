package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for unknown identifiers and wrong credentials alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// placeholderHash is compared against when the identifier is unknown so both
// failure paths cost one bcrypt comparison.
var placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("citizenhub-placeholder"), bcrypt.DefaultCost)

// HashCredential returns a salted bcrypt digest of credential.
func HashCredential(credential string) (string, error) {
	if credential == "" {
		return "", errors.New("empty credential")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyCredential compares credential with a stored digest. An empty hash
// still performs a comparison and then fails.
func VerifyCredential(hash, credential string) error {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(placeholderHash, []byte(credential))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
