package vault

import cr "github.com/oka-k/Screenshot/internal/crypto"

const (
	DefaultContainerPath = "credentials.enc"
	DefaultLegacyPath    = "service-account-key.json"
)

type Config struct {
	// ContainerPath is the id of the encrypted container in the store.
	ContainerPath string
	// LegacyPath is a plaintext credential file used when no container
	// exists. It is read, never modified.
	LegacyPath string
	// EnvPassphrase is the passphrase supplied by the process environment.
	// The caller reads the environment; the Manager never does.
	EnvPassphrase string
	// KDF must match the parameters the container was written with.
	KDF cr.KDFParams
	// StrictFingerprint refuses machine binding when a fingerprint signal
	// is missing instead of deriving from the reduced input.
	StrictFingerprint bool
	// Interactive allows prompting for a passphrase when a container exists
	// and no other passphrase was supplied.
	Interactive bool
}

func (c *Config) setDefaults() {
	if c.ContainerPath == "" {
		c.ContainerPath = DefaultContainerPath
	}
	if c.LegacyPath == "" {
		c.LegacyPath = DefaultLegacyPath
	}
	if c.KDF == (cr.KDFParams{}) {
		c.KDF = cr.DefaultKDF()
	}
}
