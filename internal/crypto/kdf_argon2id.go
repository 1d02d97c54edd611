package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	KeySize  = 32
)

// KDFParams are the Argon2id cost parameters. M is in KiB.
type KDFParams struct {
	M uint32
	T uint32
	P uint8
}

// DefaultKDF costs a few tens of milliseconds per guess on a desktop CPU.
// Containers written with format v1 are derived with these parameters.
func DefaultKDF() KDFParams {
	return KDFParams{M: 64 * 1024, T: 3, P: 4}
}

func (p KDFParams) String() string {
	return fmt.Sprintf("argon2id(m=%d,t=%d,p=%d)", p.M, p.T, p.P)
}

func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey stretches a low-entropy secret into a cipher key. The same
// secret, salt and params always yield the same key.
func DeriveKey(secret, salt []byte, p KDFParams) (key [KeySize]byte) {
	k := argon2.IDKey(secret, salt, p.T, p.M, p.P, KeySize)
	copy(key[:], k)
	Zero(k)
	return
}
