package agent

import (
	"context"
	"errors"
	"path"

	"github.com/oka-k/Screenshot/internal/storage"
)

// BlobUploader stores captures in a BlobStore under <project>/<name>.
type BlobUploader struct {
	store storage.BlobStore
}

func NewBlobUploader(store storage.BlobStore) *BlobUploader {
	return &BlobUploader{store: store}
}

func (u *BlobUploader) Upload(ctx context.Context, creds Credentials, c Capture) error {
	if creds.ProjectID == "" {
		return errors.New("agent: credentials carry no project id")
	}
	return u.store.Put(ctx, path.Join(creds.ProjectID, c.Name), c.Data)
}
