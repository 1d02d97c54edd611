package fingerprint

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	SignalHostname   = "hostname"
	SignalProcessor  = "processor"
	SignalPlatformID = "platform_id"
)

type Fingerprint struct {
	// Value is the hex digest used as the unlock secret.
	Value string
	// Signals lists the attributes that went into Value, in order.
	Signals []string
	// Missing lists the attributes that could not be read.
	Missing []string
}

// Degraded reports whether any intended signal was unavailable.
func (f Fingerprint) Degraded() bool { return len(f.Missing) > 0 }

type Provider interface {
	Fingerprint() Fingerprint
}

// Probe reads one host attribute.
type Probe struct {
	Name string
	Read func() (string, error)
}

// Host hashes the output of its probes with BLAKE3.
type Host struct {
	probes []Probe
}

// NewHostProvider probes the running machine with the platform defaults.
func NewHostProvider() *Host {
	return NewProvider(
		Probe{Name: SignalHostname, Read: hostname},
		Probe{Name: SignalProcessor, Read: processorDescription},
		Probe{Name: SignalPlatformID, Read: platformID},
	)
}

func NewProvider(probes ...Probe) *Host {
	return &Host{probes: probes}
}

func (h *Host) Fingerprint() Fingerprint {
	var fp Fingerprint
	hasher := blake3.New()
	for _, p := range h.probes {
		v, err := p.Read()
		v = strings.TrimSpace(v)
		if err != nil || v == "" {
			fp.Missing = append(fp.Missing, p.Name)
			continue
		}
		hasher.Write([]byte(p.Name + "=" + v + "\n"))
		fp.Signals = append(fp.Signals, p.Name)
	}
	fp.Value = hex.EncodeToString(hasher.Sum(nil))
	return fp
}

// Static is a constant provider for headless hosts and tests.
type Static string

func (s Static) Fingerprint() Fingerprint {
	return Fingerprint{Value: string(s), Signals: []string{"static"}}
}
