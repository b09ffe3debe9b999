// Package auth verifies Piston API keys on the mock server.
//
// Keys are never stored in plain text: the server is configured with a bcrypt hash
// (PISTON_API_KEY_HASH) and compares the Authorization header against it.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/piston-go/internal/apperror"
)

const defaultCost = 12

// bcrypt ignores everything past 72 bytes, so longer keys are rejected outright.
const maxKeyLength = 72

// KeyService hashes and verifies API keys.
type KeyService struct {
	cost int
}

func NewKeyService() *KeyService {
	return &KeyService{cost: defaultCost}
}

// NewKeyServiceForTest uses a low bcrypt cost so tests in other packages stay fast.
func NewKeyServiceForTest() *KeyService {
	return &KeyService{cost: bcrypt.MinCost}
}

// Hash returns the bcrypt hash of key.
func (k *KeyService) Hash(key string) (string, error) {
	if len(key) > maxKeyLength {
		return "", fmt.Errorf("auth: api key must be %d bytes or fewer", maxKeyLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(key), k.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing api key: %w", err)
	}
	return string(hashed), nil
}

// Verify checks key against hash. A mismatch is reported as apperror.ErrUnauthorized.
func (k *KeyService) Verify(hash, key string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.Unauthorized("invalid api key")
		}
		return fmt.Errorf("auth: comparing api key hash: %w", err)
	}
	return nil
}
