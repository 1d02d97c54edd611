// Package agent runs the capture upload cycle. Each cycle retrieves the
// service-account credentials, checks their shape, and pushes every
// pending capture to the upload target.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oka-k/Screenshot/internal/vault"
)

var ErrCredentials = errors.New("agent: credentials unavailable")

// CredentialSource is satisfied by *vault.Manager.
type CredentialSource interface {
	Retrieve(ctx context.Context, u vault.Unlock) (vault.Document, vault.Outcome, error)
}

type Capture struct {
	Name string
	Data []byte
}

// Capturer yields captures waiting for upload and forgets them once they
// have been uploaded.
type Capturer interface {
	Pending(ctx context.Context) ([]Capture, error)
	Done(ctx context.Context, c Capture) error
}

type Uploader interface {
	Upload(ctx context.Context, creds Credentials, c Capture) error
}

type Config struct {
	Interval time.Duration
	Unlock   vault.Unlock
}

func (c *Config) setDefaults() {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
}

type Driver struct {
	cfg      Config
	creds    CredentialSource
	capturer Capturer
	uploader Uploader
	log      logrus.FieldLogger
}

func New(cfg Config, creds CredentialSource, capturer Capturer, uploader Uploader, log logrus.FieldLogger) *Driver {
	cfg.setDefaults()
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Driver{
		cfg:      cfg,
		creds:    creds,
		capturer: capturer,
		uploader: uploader,
		log:      log,
	}
}

type Report struct {
	Uploaded int
	Failed   int
}

// Cycle runs one retrieve/validate/upload pass. A credential problem
// aborts the pass before anything is uploaded. A failed upload leaves the
// capture pending for the next pass.
func (d *Driver) Cycle(ctx context.Context) (Report, error) {
	var rep Report
	doc, out, err := d.creds.Retrieve(ctx, d.cfg.Unlock)
	if err != nil {
		return rep, fmt.Errorf("%w: %w", ErrCredentials, err)
	}
	creds, err := ValidateCredentials(doc)
	if err != nil {
		return rep, fmt.Errorf("%w: %w", ErrCredentials, err)
	}
	d.log.WithFields(logrus.Fields{
		"source":  out.Source,
		"unlock":  out.Unlock.String(),
		"project": creds.ProjectID,
	}).Debug("agent: Credentials loaded")

	pending, err := d.capturer.Pending(ctx)
	if err != nil {
		return rep, fmt.Errorf("agent: listing captures: %w", err)
	}
	for _, c := range pending {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := d.uploader.Upload(ctx, creds, c); err != nil {
			rep.Failed++
			d.log.WithFields(logrus.Fields{
				"capture": c.Name,
				"error":   err,
			}).Error("agent: Upload failed")
			continue
		}
		if err := d.capturer.Done(ctx, c); err != nil {
			d.log.WithFields(logrus.Fields{
				"capture": c.Name,
				"error":   err,
			}).Warn("agent: Failed to clear uploaded capture")
		}
		rep.Uploaded++
	}
	return rep, nil
}

// Run calls Cycle immediately and then once per interval until ctx is
// done. Cycle errors are logged and never stop the loop.
func (d *Driver) Run(ctx context.Context) error {
	d.log.WithFields(logrus.Fields{
		"interval": d.cfg.Interval.String(),
	}).Info("agent: Starting upload driver")

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	for {
		rep, err := d.Cycle(ctx)
		switch {
		case ctx.Err() != nil:
		case err != nil:
			d.log.WithFields(logrus.Fields{
				"error": err,
			}).Error("agent: Cycle failed")
		case rep.Uploaded+rep.Failed > 0:
			d.log.WithFields(logrus.Fields{
				"uploaded": rep.Uploaded,
				"failed":   rep.Failed,
			}).Info("agent: Cycle complete")
		}

		select {
		case <-ctx.Done():
			d.log.Info("agent: Stopping upload driver")
			return nil
		case <-ticker.C:
		}
	}
}
