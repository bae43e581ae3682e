package utils

import "golang.org/x/crypto/bcrypt"

// HashAPIKey returns the bcrypt hash of an API key, for operators generating
// the APIKeyHash config value.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAPIKey compares the configured bcrypt hash with a presented key.
func CheckAPIKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
