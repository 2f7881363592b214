package lockmgr

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	bitLength = 256
)

// generateOwnerID creates a new unique owner ID
// The owner ID is a random value of bitLength bits, hex encoded.
func generateOwnerID() (string, error) {
	randomBytes := make([]byte, bitLength/8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(randomBytes), nil
}
