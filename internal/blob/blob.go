// Package blob defines the object-store contract for large binary payloads
// and an S3-backed implementation. Blobs travel out-of-band from record
// metadata: documents carry URLs, never raw bytes.
package blob

import (
	"context"

	"github.com/akalniens/keepsync/internal/models"
)

// Store is the object store contract needed by the blob lifecycle manager.
type Store interface {
	// Upload writes bytes under the given path, overwriting any previous
	// object there, and returns a stable dereferenceable URL.
	Upload(ctx context.Context, path string, data []byte) (string, error)

	// Download fetches previously uploaded content. It fails explicitly
	// (common.ErrBlobNotFound) if the object does not exist.
	Download(ctx context.Context, url string) ([]byte, error)

	// Delete removes the object at path. Best-effort; failures are logged by
	// callers, not fatal to record deletion.
	Delete(ctx context.Context, path string) error
}

// ObjectPath builds the deterministic storage key for a record attachment:
// {collection}/{id}/{field}.{ext}. Re-uploads for the same field overwrite
// rather than accumulating orphans.
func ObjectPath(c models.Collection, id string, f models.AttachmentField, ext string) string {
	p := string(c) + "/" + id + "/" + string(f)
	if ext != "" {
		p += "." + ext
	}
	return p
}
