package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	cr "github.com/oka-k/Screenshot/internal/crypto"
	"github.com/oka-k/Screenshot/internal/fingerprint"
	"github.com/oka-k/Screenshot/internal/vault"
)

type queuedPrompter struct {
	answers []string
	calls   int
}

func (q *queuedPrompter) PromptPassphrase(string) (string, error) {
	if q.calls >= len(q.answers) {
		return "", io.EOF
	}
	a := q.answers[q.calls]
	q.calls++
	return a, nil
}

func TestLineConfirmer(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"y", true},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		got, err := newLineConfirmer(strings.NewReader(tc.in), &out).Confirm("Delete?")
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("%q: got %v", tc.in, got)
		}
		if !strings.Contains(out.String(), "Delete? (y/n)") {
			t.Errorf("prompt = %q", out.String())
		}
	}
	if _, err := newLineConfirmer(strings.NewReader(""), io.Discard).Confirm("Delete?"); err == nil {
		t.Fatal("closed stdin counted as an answer")
	}
}

func TestReadSecretFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pw")
	if err := os.WriteFile(path, []byte("TestPassword123!\r\n\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := readSecretFile(path)
	if err != nil || got != "TestPassword123!" {
		t.Fatalf("got %q, %v", got, err)
	}

	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readSecretFile(empty); !errors.Is(err, vault.ErrEmptyPassphrase) {
		t.Fatalf("empty file: %v", err)
	}
}

func TestNewPassphrase(t *testing.T) {
	if got, err := newPassphrase(&queuedPrompter{answers: []string{"abc", "abc"}}); err != nil || got != "abc" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := newPassphrase(&queuedPrompter{answers: []string{"abc", "abd"}}); !errors.Is(err, vault.ErrPassphraseMismatch) {
		t.Fatalf("mismatch: %v", err)
	}
	if _, err := newPassphrase(&queuedPrompter{answers: []string{""}}); !errors.Is(err, vault.ErrEmptyPassphrase) {
		t.Fatalf("empty: %v", err)
	}
}

func TestEncryptUnlock(t *testing.T) {
	u, err := encryptUnlock(true, true, "", nil)
	if err != nil || u.Kind() != vault.UnlockMachine {
		t.Fatalf("machine: %v %v", u.Kind(), err)
	}
	u, err = encryptUnlock(false, true, "", &queuedPrompter{answers: []string{"pw", "pw"}})
	if err != nil || u.Kind() != vault.UnlockPassphrase {
		t.Fatalf("prompt: %v %v", u.Kind(), err)
	}
	u, err = encryptUnlock(false, false, "", nil)
	if err != nil || u.Kind() != vault.UnlockUnspecified {
		t.Fatalf("default: %v %v", u.Kind(), err)
	}
}

func testManager(t *testing.T, p vault.Prompter) *vault.Manager {
	t.Helper()
	dir := t.TempDir()
	l := logrus.New()
	l.Out = io.Discard
	m := vault.New(vault.Config{
		ContainerPath: filepath.Join(dir, "credentials.enc"),
		LegacyPath:    filepath.Join(dir, "service-account-key.json"),
		KDF:           cr.KDFParams{M: 8 * 1024, T: 1, P: 1},
		Interactive:   true,
	}, vault.WithPrompter(p), vault.WithFingerprint(fingerprint.Static("m")), vault.WithLogger(l))

	doc, err := vault.DecodeDocument([]byte(`{"project_id":"p"}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.EncryptAndStore(context.Background(), doc, vault.Passphrase("right"), ""); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRetrieveRetriesPrompt(t *testing.T) {
	ctx := context.Background()
	p := &queuedPrompter{answers: []string{"wrong", "right"}}
	m := testManager(t, p)
	doc, err := retrieve(ctx, m, vault.Unlock{}, true)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.String("project_id"); v != "p" || p.calls != 2 {
		t.Fatalf("project_id=%q prompts=%d", v, p.calls)
	}
}

func TestRetrieveGivesUp(t *testing.T) {
	ctx := context.Background()
	p := &queuedPrompter{answers: []string{"a", "b", "c", "right"}}
	m := testManager(t, p)
	if _, err := retrieve(ctx, m, vault.Unlock{}, true); !errors.Is(err, vault.ErrAuthentication) {
		t.Fatalf("got %v", err)
	}
	if p.calls != maxAttempts {
		t.Fatalf("prompts = %d", p.calls)
	}

	// An explicit passphrase is tried once.
	if _, err := retrieve(ctx, m, vault.Passphrase("wrong"), false); !errors.Is(err, vault.ErrAuthentication) {
		t.Fatalf("got %v", err)
	}
}
