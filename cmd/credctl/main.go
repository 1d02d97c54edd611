package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/oka-k/Screenshot/internal/config"
	"github.com/oka-k/Screenshot/internal/logger"
	"github.com/oka-k/Screenshot/internal/platform"
	"github.com/oka-k/Screenshot/internal/storage"
	"github.com/oka-k/Screenshot/internal/vault"
)

const maxAttempts = 3

// common holds the flags every subcommand accepts.
type common struct {
	configPath string
	mongoURI   string
	db         string
	coll       string
	container  string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.mongoURI, "mongo", "", "MongoDB URI (optional, overrides storage.mongo_uri)")
	fs.StringVar(&c.db, "db", "", "Mongo database name")
	fs.StringVar(&c.coll, "coll", "", "Mongo collection name")
	fs.StringVar(&c.container, "container", "", "container path (overrides vault.container)")
}

type env struct {
	cfg      config.File
	mgr      *vault.Manager
	prompter *termPrompter
	closer   func()
}

func (c *common) open(ctx context.Context, opts ...vault.Option) (*env, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Options{Level: cfg.Log.Level}); err != nil {
		return nil, err
	}
	if c.container != "" {
		cfg.Vault.Container = c.container
	}
	if c.mongoURI != "" {
		cfg.Storage.MongoURI = c.mongoURI
	}
	if c.db != "" {
		cfg.Storage.Database = c.db
	}
	if c.coll != "" {
		cfg.Storage.Collection = c.coll
	}

	store, closer, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	p := newTermPrompter()
	vc := cfg.VaultConfig()
	vc.Interactive = vc.Interactive || p.available()

	opts = append([]vault.Option{vault.WithStore(store), vault.WithPrompter(p)}, opts...)
	return &env{
		cfg:      cfg,
		mgr:      vault.New(vc, opts...),
		prompter: p,
		closer:   closer,
	}, nil
}

func buildStore(ctx context.Context, s config.StorageSection) (storage.BlobStore, func(), error) {
	if s.MongoURI == "" {
		return storage.NewFileStore(""), func() {}, nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ms, err := storage.NewMongoStore(dialCtx, s.MongoURI, s.Database, s.Collection)
	if err != nil {
		return nil, nil, err
	}
	return ms, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ms.Close(closeCtx)
	}, nil
}

func main() {
	if err := platform.DisableCoreDumps(); err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Warn("credctl: Failed to disable core dumps")
	}
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "encrypt":
		err = cmdEncrypt(ctx, os.Args[2:])
	case "decrypt":
		err = cmdDecrypt(ctx, os.Args[2:])
	case "rekey":
		err = cmdRekey(ctx, os.Args[2:])
	case "inspect":
		err = cmdInspect(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	dieIf(err)
}

func usage() {
	fmt.Fprint(os.Stderr, `credctl commands:

  encrypt <credentials.json> [--out path] [--machine | --prompt | --passphrase-file f] [--yes]
  decrypt [--container path] [--machine | --passphrase-file f]
  rekey   [--container path] [--passphrase-file f] [--to-machine]
  inspect [--container path]

Common flags: --config file.yaml --mongo URI --db screenshot --coll blobs

Without --machine, --prompt or --passphrase-file the passphrase comes from
SCREENSHOT_PASSWORD, and without that the container is bound to this machine.

Examples:
  credctl encrypt service-account-key.json
  SCREENSHOT_PASSWORD=... credctl decrypt
  credctl rekey --to-machine
`)
}

func cmdEncrypt(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("encrypt", flag.ExitOnError)
	var c common
	c.register(fs)
	out := fs.String("out", "", "container path to write (default vault.container)")
	machine := fs.Bool("machine", false, "bind the container to this machine")
	prompt := fs.Bool("prompt", false, "prompt for a new passphrase")
	passFile := fs.String("passphrase-file", "", "read the passphrase from a file")
	yes := fs.Bool("yes", false, "delete the plaintext file without asking")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("encrypt needs exactly one credentials file")
	}
	src := fs.Arg(0)

	var confirmer vault.Confirmer = newLineConfirmer(os.Stdin, os.Stderr)
	if *yes {
		confirmer = alwaysConfirm{}
	}
	e, err := c.open(ctx, vault.WithConfirmer(confirmer))
	if err != nil {
		return err
	}
	defer e.closer()

	u, err := encryptUnlock(*machine, *prompt, *passFile, e.prompter)
	if err != nil {
		return err
	}
	deleted, err := e.mgr.EncryptFile(ctx, src, u, *out)
	if err != nil {
		return err
	}
	dest := *out
	if dest == "" {
		dest = e.cfg.Vault.Container
	}
	fmt.Println("Credentials encrypted:", dest)
	if deleted {
		fmt.Println("Original deleted:", src)
	} else {
		fmt.Println("Original kept:", src)
	}
	return nil
}

func encryptUnlock(machine, prompt bool, passFile string, p vault.Prompter) (vault.Unlock, error) {
	switch {
	case machine:
		return vault.MachineBound(), nil
	case passFile != "":
		s, err := readSecretFile(passFile)
		if err != nil {
			return vault.Unlock{}, err
		}
		return vault.Passphrase(s), nil
	case prompt:
		s, err := newPassphrase(p)
		if err != nil {
			return vault.Unlock{}, err
		}
		return vault.Passphrase(s), nil
	}
	return vault.Unlock{}, nil
}

func cmdDecrypt(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("decrypt", flag.ExitOnError)
	var c common
	c.register(fs)
	machine := fs.Bool("machine", false, "use the machine binding")
	passFile := fs.String("passphrase-file", "", "read the passphrase from a file")
	_ = fs.Parse(args)

	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.closer()

	u := vault.Unlock{}
	switch {
	case *machine:
		u = vault.MachineBound()
	case *passFile != "":
		s, err := readSecretFile(*passFile)
		if err != nil {
			return err
		}
		u = vault.Passphrase(s)
	}
	retry := u.Kind() == vault.UnlockUnspecified && e.cfg.Vault.Passphrase == "" && e.prompter.available()

	doc, err := retrieve(ctx, e.mgr, u, retry)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// retrieve gives an interactive user up to maxAttempts passphrases, one
// per second at most.
func retrieve(ctx context.Context, m *vault.Manager, u vault.Unlock, retry bool) (vault.Document, error) {
	attempts := 1
	if retry {
		attempts = maxAttempts
	}
	lim := rate.NewLimiter(rate.Every(time.Second), 1)
	var err error
	for i := 0; i < attempts; i++ {
		if err := lim.Wait(ctx); err != nil {
			return nil, err
		}
		var doc vault.Document
		var out vault.Outcome
		doc, out, err = m.Retrieve(ctx, u)
		if err == nil {
			logrus.WithFields(logrus.Fields{
				"source": out.Source,
				"unlock": out.Unlock.String(),
			}).Debug("credctl: Credentials retrieved")
			return doc, nil
		}
		if !errors.Is(err, vault.ErrAuthentication) || out.Unlock != vault.UnlockPassphrase {
			return nil, err
		}
		if i+1 < attempts {
			fmt.Fprintln(os.Stderr, "Wrong passphrase, try again.")
		}
	}
	return nil, err
}

func cmdRekey(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rekey", flag.ExitOnError)
	var c common
	c.register(fs)
	passFile := fs.String("passphrase-file", "", "read the current passphrase from a file")
	fromMachine := fs.Bool("from-machine", false, "the container is currently machine-bound")
	toMachine := fs.Bool("to-machine", false, "bind the new container to this machine")
	_ = fs.Parse(args)

	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.closer()

	oldUnlock := vault.Unlock{}
	switch {
	case *fromMachine:
		oldUnlock = vault.MachineBound()
	case *passFile != "":
		s, err := readSecretFile(*passFile)
		if err != nil {
			return err
		}
		oldUnlock = vault.Passphrase(s)
	}

	newUnlock := vault.MachineBound()
	if !*toMachine {
		s, err := newPassphrase(e.prompter)
		if err != nil {
			return err
		}
		newUnlock = vault.Passphrase(s)
	}
	if err := e.mgr.Rekey(ctx, oldUnlock, newUnlock, ""); err != nil {
		return err
	}
	fmt.Println("Container rekeyed:", e.cfg.Vault.Container)
	return nil
}

func cmdInspect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var c common
	c.register(fs)
	_ = fs.Parse(args)

	e, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer e.closer()

	info, err := e.mgr.Inspect(ctx, "")
	if err != nil {
		return err
	}
	b, _ := json.MarshalIndent(info, "", "  ")
	fmt.Println(string(b))
	return nil
}

func dieIf(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
