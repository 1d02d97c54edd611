package vault

import (
	"fmt"

	cr "github.com/oka-k/Screenshot/internal/crypto"
)

const (
	// FormatLegacy marks version-less containers written by the previous
	// tool: salt[16] || fernet-token. It is never written.
	FormatLegacy byte = 0x00
	// FormatV1 is version[1] || salt[16] || nonce[24] || ciphertext || tag[16],
	// with argon2id key derivation and XChaCha20-Poly1305.
	FormatV1 byte = 0x01

	SaltSize   = cr.SaltSize
	minFrameV1 = 1 + SaltSize + cr.Overhead
)

// Container is the persisted artifact. Salts are public; the ciphertext
// carries its own nonce and tag.
type Container struct {
	Version    byte
	Salt       []byte
	Ciphertext []byte
}

// header is bound to the ciphertext as associated data.
func (c Container) header() []byte {
	h := make([]byte, 0, 1+len(c.Salt))
	h = append(h, c.Version)
	return append(h, c.Salt...)
}

func MarshalContainer(c Container) []byte {
	out := make([]byte, 0, 1+len(c.Salt)+len(c.Ciphertext))
	if c.Version != FormatLegacy {
		out = append(out, c.Version)
	}
	out = append(out, c.Salt...)
	return append(out, c.Ciphertext...)
}

func UnmarshalContainer(b []byte) (Container, error) {
	if len(b) < 1+SaltSize {
		return Container{}, fmt.Errorf("%w: %d bytes", ErrMalformedContainer, len(b))
	}
	if cr.LooksLikeFernet(b[SaltSize:]) {
		return Container{
			Version:    FormatLegacy,
			Salt:       b[:SaltSize],
			Ciphertext: b[SaltSize:],
		}, nil
	}
	switch b[0] {
	case FormatV1:
		if len(b) < minFrameV1 {
			return Container{}, fmt.Errorf("%w: %d bytes", ErrMalformedContainer, len(b))
		}
		return Container{
			Version:    FormatV1,
			Salt:       b[1 : 1+SaltSize],
			Ciphertext: b[1+SaltSize:],
		}, nil
	default:
		return Container{}, fmt.Errorf("%w: 0x%02x", ErrUnsupportedVersion, b[0])
	}
}
