package fingerprint

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fixed(v string) func() (string, error) {
	return func() (string, error) { return v, nil }
}

func failing() (string, error) { return "", errors.New("permission denied") }

func TestHostDeterministic(t *testing.T) {
	p := NewProvider(
		Probe{Name: SignalHostname, Read: fixed("desk-01")},
		Probe{Name: SignalProcessor, Read: fixed("Intel64 Family 6")},
		Probe{Name: SignalPlatformID, Read: fixed("4C4C4544-0042")},
	)
	a := p.Fingerprint()
	b := p.Fingerprint()
	if a.Value != b.Value {
		t.Fatal("fingerprint is not stable")
	}
	if len(a.Value) != 64 {
		t.Fatalf("digest length = %d, want 64 hex chars", len(a.Value))
	}
	if a.Degraded() {
		t.Fatalf("unexpected missing signals: %v", a.Missing)
	}
}

func TestHostDegradesGracefully(t *testing.T) {
	full := NewProvider(
		Probe{Name: SignalHostname, Read: fixed("desk-01")},
		Probe{Name: SignalPlatformID, Read: fixed("4C4C4544-0042")},
	).Fingerprint()
	partial := NewProvider(
		Probe{Name: SignalHostname, Read: fixed("desk-01")},
		Probe{Name: SignalPlatformID, Read: failing},
	).Fingerprint()

	if !partial.Degraded() {
		t.Fatal("expected degraded fingerprint")
	}
	if len(partial.Missing) != 1 || partial.Missing[0] != SignalPlatformID {
		t.Fatalf("missing = %v", partial.Missing)
	}
	if partial.Value == "" {
		t.Fatal("degraded fingerprint must still produce a value")
	}
	if partial.Value == full.Value {
		t.Fatal("dropping a signal should change the digest")
	}
}

func TestHostBlankSignalCountsAsMissing(t *testing.T) {
	fp := NewProvider(Probe{Name: SignalPlatformID, Read: fixed("  \n")}).Fingerprint()
	if !fp.Degraded() {
		t.Fatal("blank value should be reported missing")
	}
}

func TestHostSignalsDistinguished(t *testing.T) {
	a := NewProvider(
		Probe{Name: SignalHostname, Read: fixed("ab")},
		Probe{Name: SignalProcessor, Read: fixed("c")},
	).Fingerprint()
	b := NewProvider(
		Probe{Name: SignalHostname, Read: fixed("a")},
		Probe{Name: SignalProcessor, Read: fixed("bc")},
	).Fingerprint()
	if a.Value == b.Value {
		t.Fatal("signal boundaries must be part of the digest")
	}
}

func TestNewHostProviderNeverPanics(t *testing.T) {
	fp := NewHostProvider().Fingerprint()
	if fp.Value == "" {
		t.Fatal("host fingerprint is empty")
	}
}

func TestStatic(t *testing.T) {
	fp := Static("headless").Fingerprint()
	if fp.Value != "headless" || fp.Degraded() {
		t.Fatalf("unexpected static fingerprint %+v", fp)
	}
}

func TestParseCPUModel(t *testing.T) {
	cpuinfo := "processor\t: 0\nvendor_id\t: GenuineIntel\nmodel name\t: Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz\n"
	if got := parseCPUModel(strings.NewReader(cpuinfo)); got != "Intel(R) Core(TM) i7-8650U CPU @ 1.90GHz" {
		t.Fatalf("parseCPUModel = %q", got)
	}
	if got := parseCPUModel(strings.NewReader("processor\t: 0\n")); got != "" {
		t.Fatalf("parseCPUModel without model = %q", got)
	}
}

func TestParseWMICUUID(t *testing.T) {
	out := "UUID                                  \r\r\n4C4C4544-0042-3510-8056-B4C04F4E3732  \r\r\n\r\r\n"
	if got := parseWMICUUID(out); got != "4C4C4544-0042-3510-8056-B4C04F4E3732" {
		t.Fatalf("parseWMICUUID = %q", got)
	}
	if got := parseWMICUUID("UUID\r\n\r\n"); got != "" {
		t.Fatalf("parseWMICUUID header only = %q", got)
	}
}

func TestParseIORegUUID(t *testing.T) {
	out := `+-o MacBookPro15,1  <class IOPlatformExpertDevice>
    {
      "IOPlatformSerialNumber" = "C02XXXXX"
      "IOPlatformUUID" = "6B9A1C2E-1111-2222-3333-444455556666"
    }`
	if got := parseIORegUUID(out); got != "6B9A1C2E-1111-2222-3333-444455556666" {
		t.Fatalf("parseIORegUUID = %q", got)
	}
	if got := parseIORegUUID("nothing here"); got != "" {
		t.Fatalf("parseIORegUUID = %q", got)
	}
}

func TestReadFirst(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	full := filepath.Join(dir, "machine-id")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte("abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := readFirst(filepath.Join(dir, "missing"), empty, full)
	if err != nil || got != "abc123" {
		t.Fatalf("readFirst = %q, %v", got, err)
	}
	if _, err := readFirst(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error when nothing readable")
	}
}
