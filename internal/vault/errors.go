package vault

import (
	"errors"
	"fmt"

	cr "github.com/oka-k/Screenshot/internal/crypto"
)

var (
	// ErrMissingSource means neither an encrypted container nor a legacy
	// plaintext document exists.
	ErrMissingSource = errors.New("vault: no credential source found")

	// ErrAuthentication is wrapped by DecryptError: wrong secret or a
	// corrupted container.
	ErrAuthentication = cr.ErrAuthentication

	ErrMalformedContainer  = errors.New("vault: malformed container")
	ErrUnsupportedVersion  = errors.New("vault: unsupported container version")
	ErrMalformedDocument   = errors.New("vault: malformed credential document")
	ErrFingerprintDegraded = errors.New("vault: machine fingerprint incomplete")
	ErrEmptyPassphrase     = errors.New("vault: empty passphrase")
	ErrPassphraseMismatch  = errors.New("vault: passphrases do not match")
)

// DecryptError reports a container that failed authentication.
type DecryptError struct {
	Source string
	Unlock UnlockKind
	Err    error
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("vault: cannot decrypt %s with %s unlock: wrong secret or corrupted file", e.Source, e.Unlock)
}

func (e *DecryptError) Unwrap() error { return e.Err }
