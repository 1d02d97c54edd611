package vault

type UnlockKind int

const (
	// UnlockUnspecified defers the choice to the resolution precedence:
	// configured passphrase, then interactive prompt, then machine binding.
	UnlockUnspecified UnlockKind = iota
	UnlockPassphrase
	UnlockMachine
)

func (k UnlockKind) String() string {
	switch k {
	case UnlockPassphrase:
		return "passphrase"
	case UnlockMachine:
		return "machine-bound"
	default:
		return "unspecified"
	}
}

// Unlock selects the secret a container key is derived from.
type Unlock struct {
	kind       UnlockKind
	passphrase string
}

func Passphrase(p string) Unlock {
	return Unlock{kind: UnlockPassphrase, passphrase: p}
}

func MachineBound() Unlock {
	return Unlock{kind: UnlockMachine}
}

func (u Unlock) Kind() UnlockKind { return u.kind }

// Prompter asks the user for a passphrase without echo.
type Prompter interface {
	PromptPassphrase(prompt string) (string, error)
}

// Confirmer asks a yes/no question. Only an explicit yes counts.
type Confirmer interface {
	Confirm(question string) (bool, error)
}
