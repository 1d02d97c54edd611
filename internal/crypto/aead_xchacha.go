package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	xchacha "golang.org/x/crypto/chacha20poly1305"
)

// ErrAuthentication means the ciphertext did not verify: wrong key,
// tampered bytes or truncation. No plaintext is returned alongside it.
var ErrAuthentication = errors.New("crypto: message authentication failed")

// Overhead is the number of bytes SealX adds to a plaintext.
const Overhead = xchacha.NonceSizeX + xchacha.Overhead

// SealX encrypts with XChaCha20-Poly1305 under a random nonce.
// Returned layout: [nonce||ciphertext||tag].
func SealX(key, plaintext, aad []byte) ([]byte, error) {
	aead, err := xchacha.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, xchacha.NonceSizeX, xchacha.NonceSizeX+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: reading nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

func OpenX(key, ciphertext, aad []byte) ([]byte, error) {
	aead, err := xchacha.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < Overhead {
		return nil, ErrAuthentication
	}
	nonce := ciphertext[:xchacha.NonceSizeX]
	ct := ciphertext[xchacha.NonceSizeX:]
	pt, err := aead.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, ErrAuthentication
	}
	return pt, nil
}
