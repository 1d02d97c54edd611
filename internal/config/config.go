// Package config loads the YAML configuration shared by credctl and
// captured and applies environment overrides at the process boundary.
package config

import (
	"fmt"
	"time"

	cr "github.com/oka-k/Screenshot/internal/crypto"
	"github.com/oka-k/Screenshot/internal/vault"
)

const (
	DefaultInterval   = 5 * time.Minute
	DefaultSpoolDir   = "captures"
	DefaultUploadDir  = "uploads"
	DefaultMongoDB    = "screenshot"
	DefaultMongoColl  = "blobs"
	DefaultLogMaxSize = 10
	DefaultLogBackups = 5
)

type File struct {
	Vault   VaultSection   `yaml:"vault"`
	Storage StorageSection `yaml:"storage"`
	Agent   AgentSection   `yaml:"agent"`
	Log     LogSection     `yaml:"log"`
}

type VaultSection struct {
	Container         string     `yaml:"container"`
	Legacy            string     `yaml:"legacy"`
	Interactive       bool       `yaml:"interactive"`
	StrictFingerprint bool       `yaml:"strict_fingerprint"`
	KDF               KDFSection `yaml:"kdf"`

	// Passphrase only ever comes from the environment.
	Passphrase string `yaml:"-"`
}

// KDFSection overrides the argon2id cost. Zero fields keep the default.
type KDFSection struct {
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Iterations  uint32 `yaml:"iterations"`
	Parallelism uint8  `yaml:"parallelism"`
}

// StorageSection selects where containers live. An empty MongoURI means
// the local filesystem.
type StorageSection struct {
	MongoURI   string `yaml:"mongo_uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type AgentSection struct {
	Spool     string        `yaml:"spool"`
	UploadDir string        `yaml:"upload_dir"`
	Interval  time.Duration `yaml:"interval"`
}

type LogSection struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when no file is given.
func Default() File {
	var f File
	f.setDefaults()
	return f
}

func (f *File) setDefaults() {
	if f.Vault.Container == "" {
		f.Vault.Container = vault.DefaultContainerPath
	}
	if f.Vault.Legacy == "" {
		f.Vault.Legacy = vault.DefaultLegacyPath
	}
	if f.Storage.Database == "" {
		f.Storage.Database = DefaultMongoDB
	}
	if f.Storage.Collection == "" {
		f.Storage.Collection = DefaultMongoColl
	}
	if f.Agent.Spool == "" {
		f.Agent.Spool = DefaultSpoolDir
	}
	if f.Agent.UploadDir == "" {
		f.Agent.UploadDir = DefaultUploadDir
	}
	if f.Agent.Interval == 0 {
		f.Agent.Interval = DefaultInterval
	}
	if f.Log.Level == "" {
		f.Log.Level = "info"
	}
	if f.Log.MaxSizeMB == 0 {
		f.Log.MaxSizeMB = DefaultLogMaxSize
	}
	if f.Log.MaxBackups == 0 {
		f.Log.MaxBackups = DefaultLogBackups
	}
}

func (f File) Validate() error {
	if f.Agent.Interval < 0 {
		return fmt.Errorf("agent.interval must be positive, got %s", f.Agent.Interval)
	}
	if f.Log.MaxSizeMB < 0 || f.Log.MaxBackups < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	k := f.Vault.KDF
	if k.MemoryKiB != 0 && k.MemoryKiB < 8*1024 {
		return fmt.Errorf("vault.kdf.memory_kib must be at least 8192, got %d", k.MemoryKiB)
	}
	return nil
}

// KDF merges the configured overrides onto the default parameters.
func (f File) KDF() cr.KDFParams {
	p := cr.DefaultKDF()
	if f.Vault.KDF.MemoryKiB != 0 {
		p.M = f.Vault.KDF.MemoryKiB
	}
	if f.Vault.KDF.Iterations != 0 {
		p.T = f.Vault.KDF.Iterations
	}
	if f.Vault.KDF.Parallelism != 0 {
		p.P = f.Vault.KDF.Parallelism
	}
	return p
}

// VaultConfig converts the file into the Manager's configuration.
func (f File) VaultConfig() vault.Config {
	return vault.Config{
		ContainerPath:     f.Vault.Container,
		LegacyPath:        f.Vault.Legacy,
		EnvPassphrase:     f.Vault.Passphrase,
		KDF:               f.KDF(),
		StrictFingerprint: f.Vault.StrictFingerprint,
		Interactive:       f.Vault.Interactive,
	}
}
