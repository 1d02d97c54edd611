package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/oka-k/Screenshot/internal/vault"
)

var errNoTerminal = errors.New("no terminal available for interactive passphrase prompt (use --passphrase-file)")

// termPrompter reads passphrases from the terminal with echo disabled.
type termPrompter struct {
	fd  int
	out io.Writer
}

func newTermPrompter() *termPrompter {
	return &termPrompter{fd: int(os.Stdin.Fd()), out: os.Stderr}
}

func (p *termPrompter) available() bool { return term.IsTerminal(p.fd) }

func (p *termPrompter) PromptPassphrase(prompt string) (string, error) {
	if !p.available() {
		return "", errNoTerminal
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// newPassphrase asks twice and insists on agreement.
func newPassphrase(p vault.Prompter) (string, error) {
	first, err := p.PromptPassphrase("New passphrase: ")
	if err != nil {
		return "", err
	}
	if first == "" {
		return "", vault.ErrEmptyPassphrase
	}
	second, err := p.PromptPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", vault.ErrPassphraseMismatch
	}
	return first, nil
}

// readSecretFile strips trailing newlines, which files written by echo
// usually carry.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	s := strings.TrimRight(string(data), "\r\n")
	if s == "" {
		return "", fmt.Errorf("%w: %s is empty", vault.ErrEmptyPassphrase, path)
	}
	return s, nil
}

// lineConfirmer reads a y/n answer. Anything other than y or yes is no.
type lineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newLineConfirmer(in io.Reader, out io.Writer) *lineConfirmer {
	return &lineConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *lineConfirmer) Confirm(question string) (bool, error) {
	fmt.Fprintf(c.out, "%s (y/n): ", question)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(string) (bool, error) { return true, nil }
