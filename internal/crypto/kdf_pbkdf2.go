package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// LegacyIterations is the PBKDF2 work factor of containers written before
// the versioned format existed.
const LegacyIterations = 100000

// DeriveLegacyKey reproduces the PBKDF2-HMAC-SHA256 derivation used by
// version-less containers. Only the read path uses it.
func DeriveLegacyKey(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, LegacyIterations, KeySize, sha256.New)
}
