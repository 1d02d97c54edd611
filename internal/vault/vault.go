// Package vault protects a service-identity credential document at rest.
//
// A Manager encrypts a document into a container (argon2id key derivation,
// XChaCha20-Poly1305) keyed by a passphrase or by the machine fingerprint,
// and recovers it through an ordered cascade of sources: the encrypted
// container first, then a legacy plaintext document, then ErrMissingSource.
package vault

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	cr "github.com/oka-k/Screenshot/internal/crypto"
	"github.com/oka-k/Screenshot/internal/fingerprint"
	"github.com/oka-k/Screenshot/internal/storage"
)

type Manager struct {
	cfg          Config
	store        storage.BlobStore
	fingerprints fingerprint.Provider
	prompter     Prompter
	confirmer    Confirmer
	log          logrus.FieldLogger
	sources      []source
}

type Option func(*Manager)

func WithStore(s storage.BlobStore) Option { return func(m *Manager) { m.store = s } }

func WithFingerprint(p fingerprint.Provider) Option {
	return func(m *Manager) { m.fingerprints = p }
}

func WithPrompter(p Prompter) Option { return func(m *Manager) { m.prompter = p } }

func WithConfirmer(c Confirmer) Option { return func(m *Manager) { m.confirmer = c } }

func WithLogger(l logrus.FieldLogger) Option { return func(m *Manager) { m.log = l } }

func New(cfg Config, opts ...Option) *Manager {
	cfg.setDefaults()
	m := &Manager{
		cfg:     cfg,
		sources: []source{containerSource{}, legacySource{}},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = storage.NewFileStore("")
	}
	if m.fingerprints == nil {
		m.fingerprints = fingerprint.NewHostProvider()
	}
	if m.log == nil {
		m.log = logrus.StandardLogger()
	}
	return m
}

func (m *Manager) Config() Config { return m.cfg }

// Encrypt seals doc into container bytes under a fresh salt.
func (m *Manager) Encrypt(ctx context.Context, doc Document, u Unlock) ([]byte, error) {
	data, _, err := m.seal(ctx, doc, u)
	return data, err
}

func (m *Manager) seal(ctx context.Context, doc Document, u Unlock) ([]byte, Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unlock{}, err
	}
	resolved, err := m.resolve(u, false)
	if err != nil {
		return nil, Unlock{}, err
	}
	secret, err := m.secret(resolved)
	if err != nil {
		return nil, Unlock{}, err
	}
	defer cr.Zero(secret)

	pt, err := doc.Encode()
	if err != nil {
		return nil, Unlock{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	defer cr.Zero(pt)

	salt, err := cr.NewSalt()
	if err != nil {
		return nil, Unlock{}, err
	}
	c := Container{Version: FormatV1, Salt: salt}
	err = cr.WithKey(secret, salt, m.cfg.KDF, func(key []byte) error {
		var err error
		c.Ciphertext, err = cr.SealX(key, pt, c.header())
		return err
	})
	if err != nil {
		return nil, Unlock{}, err
	}
	return MarshalContainer(c), resolved, nil
}

// EncryptAndStore encrypts doc and replaces the container at dest (the
// configured container path when dest is empty) in one write.
func (m *Manager) EncryptAndStore(ctx context.Context, doc Document, u Unlock, dest string) error {
	_, err := m.encryptAndStore(ctx, doc, u, dest)
	return err
}

func (m *Manager) encryptAndStore(ctx context.Context, doc Document, u Unlock, dest string) (Unlock, error) {
	if dest == "" {
		dest = m.cfg.ContainerPath
	}
	data, resolved, err := m.seal(ctx, doc, u)
	if err != nil {
		return Unlock{}, err
	}
	if err := m.writeContainer(ctx, dest, data); err != nil {
		return Unlock{}, err
	}
	m.log.WithFields(logrus.Fields{
		"path":   dest,
		"unlock": resolved.kind.String(),
		"size":   len(data),
	}).Info("vault: Credentials encrypted")
	return resolved, nil
}

// EncryptFile encrypts the plaintext document at src into dest, reads the
// container back to prove it opens, and then asks the Confirmer whether src
// should be deleted. src is removed only on an explicit yes.
func (m *Manager) EncryptFile(ctx context.Context, src string, u Unlock, dest string) (deleted bool, err error) {
	if dest == "" {
		dest = m.cfg.ContainerPath
	}
	doc, err := LoadDocument(src)
	if err != nil {
		return false, fmt.Errorf("vault: loading %s: %w", src, err)
	}
	resolved, err := m.encryptAndStore(ctx, doc, u, dest)
	if err != nil {
		return false, err
	}

	data, err := m.readContainer(ctx, dest)
	if err != nil {
		return false, err
	}
	if _, err := m.open(ctx, data, resolved, dest, nil); err != nil {
		return false, fmt.Errorf("vault: container %s does not verify, keeping %s: %w", dest, src, err)
	}

	if m.confirmer == nil {
		return false, nil
	}
	ok, err := m.confirmer.Confirm(fmt.Sprintf("Delete the original file %s?", src))
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"path":  src,
			"error": err,
		}).Warn("vault: Confirmation failed, keeping original")
		return false, nil
	}
	if !ok {
		return false, nil
	}
	if err := os.Remove(src); err != nil {
		return false, fmt.Errorf("vault: deleting %s: %w", src, err)
	}
	m.log.WithFields(logrus.Fields{
		"path": src,
	}).Info("vault: Original credentials deleted")
	return true, nil
}

// Decrypt opens container bytes. Both the current and the legacy format
// are accepted.
func (m *Manager) Decrypt(ctx context.Context, data []byte, u Unlock) (Document, error) {
	return m.open(ctx, data, u, "container", nil)
}

func (m *Manager) open(ctx context.Context, data []byte, u Unlock, name string, out *Outcome) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := UnmarshalContainer(data)
	if err != nil {
		return nil, err
	}
	resolved, err := m.resolve(u, true)
	if err != nil {
		return nil, err
	}
	if out != nil {
		out.Unlock = resolved.kind
	}
	secret, err := m.secret(resolved)
	if err != nil {
		return nil, err
	}
	defer cr.Zero(secret)

	var pt []byte
	switch c.Version {
	case FormatLegacy:
		err = cr.WithLegacyKey(secret, c.Salt, func(key []byte) error {
			var err error
			pt, err = cr.OpenFernet(key, c.Ciphertext)
			return err
		})
	default:
		err = cr.WithKey(secret, c.Salt, m.cfg.KDF, func(key []byte) error {
			var err error
			pt, err = cr.OpenX(key, c.Ciphertext, c.header())
			return err
		})
	}
	if errors.Is(err, cr.ErrAuthentication) {
		return nil, &DecryptError{Source: name, Unlock: resolved.kind, Err: err}
	}
	if err != nil {
		return nil, err
	}
	defer cr.Zero(pt)

	if c.Version == FormatLegacy {
		m.log.WithFields(logrus.Fields{
			"path": name,
		}).Warn("vault: Container uses the legacy format, rekey to upgrade")
	}
	return DecodeDocument(pt)
}

// Retrieve returns the credential document from the first source that
// exists: the encrypted container, then the legacy plaintext file. A
// container that fails to open ends the cascade; nothing is retried.
func (m *Manager) Retrieve(ctx context.Context, u Unlock) (Document, Outcome, error) {
	out := Outcome{State: StateUnresolved, Trace: []State{StateUnresolved}}
	for _, s := range m.sources {
		doc, err := s.open(ctx, m, u, &out)
		if errors.Is(err, errSourceAbsent) {
			continue
		}
		if err != nil {
			out.advance(StateFailed)
			m.log.WithFields(logrus.Fields{
				"source": s.name(),
				"path":   out.Source,
				"error":  err,
			}).Error("vault: Credential retrieval failed")
			return nil, out, err
		}
		out.advance(StateSucceeded)
		return doc, out, nil
	}
	out.advance(StateFailed)
	return nil, out, fmt.Errorf("%w: tried %s and %s", ErrMissingSource, m.cfg.ContainerPath, m.cfg.LegacyPath)
}

// Rekey re-encrypts the container at path under newUnlock with a fresh
// salt. The old container is replaced wholesale.
func (m *Manager) Rekey(ctx context.Context, oldUnlock, newUnlock Unlock, path string) error {
	if path == "" {
		path = m.cfg.ContainerPath
	}
	data, err := m.readContainer(ctx, path)
	if err != nil {
		return err
	}
	doc, err := m.open(ctx, data, oldUnlock, path, nil)
	if err != nil {
		return err
	}
	resolved, err := m.encryptAndStore(ctx, doc, newUnlock, path)
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{
		"path":   path,
		"unlock": resolved.kind.String(),
	}).Info("vault: Container rekeyed")
	return nil
}

type ContainerInfo struct {
	Path           string
	Version        byte
	Salt           string
	Size           int
	CiphertextSize int
}

// Inspect reports the framing of a container without deriving a key.
func (m *Manager) Inspect(ctx context.Context, path string) (ContainerInfo, error) {
	if path == "" {
		path = m.cfg.ContainerPath
	}
	data, err := m.readContainer(ctx, path)
	if err != nil {
		return ContainerInfo{}, err
	}
	c, err := UnmarshalContainer(data)
	if err != nil {
		return ContainerInfo{}, err
	}
	return ContainerInfo{
		Path:           path,
		Version:        c.Version,
		Salt:           hex.EncodeToString(c.Salt),
		Size:           len(data),
		CiphertextSize: len(c.Ciphertext),
	}, nil
}
