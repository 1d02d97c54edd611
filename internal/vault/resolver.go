package vault

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/oka-k/Screenshot/internal/storage"
)

// State is a step of Retrieve. Succeeded and Failed are terminal.
type State int

const (
	StateUnresolved State = iota
	StateContainerFound
	StateLegacyFound
	StateFailed
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateContainerFound:
		return "container-found"
	case StateLegacyFound:
		return "legacy-found"
	case StateFailed:
		return "failed"
	case StateSucceeded:
		return "succeeded"
	default:
		return "unresolved"
	}
}

// Outcome describes how Retrieve reached its result.
type Outcome struct {
	State  State
	Source string
	Unlock UnlockKind
	// Trace holds every state visited, starting with StateUnresolved.
	Trace []State
}

func (o *Outcome) advance(s State) {
	o.State = s
	o.Trace = append(o.Trace, s)
}

var errSourceAbsent = errors.New("vault: source absent")

// source is one step of the retrieval cascade. open returns errSourceAbsent
// when there is nothing to read so that the next source is tried; any other
// error ends the cascade.
type source interface {
	name() string
	open(ctx context.Context, m *Manager, u Unlock, out *Outcome) (Document, error)
}

type containerSource struct{}

func (containerSource) name() string { return "container" }

func (containerSource) open(ctx context.Context, m *Manager, u Unlock, out *Outcome) (Document, error) {
	data, err := m.store.Get(ctx, m.cfg.ContainerPath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errSourceAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("vault: reading container %s: %w", m.cfg.ContainerPath, err)
	}
	out.Source = m.cfg.ContainerPath
	out.advance(StateContainerFound)
	return m.open(ctx, data, u, m.cfg.ContainerPath, out)
}

type legacySource struct{}

func (legacySource) name() string { return "legacy" }

func (legacySource) open(_ context.Context, m *Manager, _ Unlock, out *Outcome) (Document, error) {
	b, err := os.ReadFile(m.cfg.LegacyPath)
	if os.IsNotExist(err) {
		return nil, errSourceAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("vault: reading legacy document %s: %w", m.cfg.LegacyPath, err)
	}
	out.Source = m.cfg.LegacyPath
	out.advance(StateLegacyFound)
	m.log.WithFields(logrus.Fields{
		"path": m.cfg.LegacyPath,
	}).Warn("vault: Using unencrypted legacy credentials")
	return DecodeDocument(b)
}

// resolve turns u into a concrete passphrase or machine-bound unlock.
// containerPresent gates the interactive prompt.
func (m *Manager) resolve(u Unlock, containerPresent bool) (Unlock, error) {
	switch u.kind {
	case UnlockPassphrase:
		if u.passphrase == "" {
			return Unlock{}, ErrEmptyPassphrase
		}
		return u, nil
	case UnlockMachine:
		return u, nil
	}

	if m.cfg.EnvPassphrase != "" {
		return Passphrase(m.cfg.EnvPassphrase), nil
	}
	if containerPresent && m.cfg.Interactive && m.prompter != nil {
		p, err := m.prompter.PromptPassphrase("Passphrase for " + m.cfg.ContainerPath + ": ")
		if err != nil {
			return Unlock{}, fmt.Errorf("vault: reading passphrase: %w", err)
		}
		if p == "" {
			return Unlock{}, ErrEmptyPassphrase
		}
		return Passphrase(p), nil
	}
	return MachineBound(), nil
}

// secret returns the bytes a key is derived from. The caller zeroes them.
func (m *Manager) secret(u Unlock) ([]byte, error) {
	if u.kind == UnlockPassphrase {
		return []byte(u.passphrase), nil
	}

	fp := m.fingerprints.Fingerprint()
	if fp.Degraded() {
		m.log.WithFields(logrus.Fields{
			"signals": fp.Signals,
			"missing": fp.Missing,
		}).Warn("vault: Machine fingerprint degraded")
		if m.cfg.StrictFingerprint {
			return nil, fmt.Errorf("%w: missing %v", ErrFingerprintDegraded, fp.Missing)
		}
	}
	return []byte(fp.Value), nil
}
