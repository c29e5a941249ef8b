// Package remote defines the contract of the cloud document store that owns
// the canonical shared copy of every record, and a PostgreSQL-backed
// implementation of it.
//
// Every operation is namespaced under the authenticated user's identity via
// UserPath; callers gate on identity before calling. Availability is assumed
// unreliable: every call may fail due to partition and is treated as a soft
// failure by the synchronizer.
package remote

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akalniens/keepsync/internal/models"
)

// Document is the remote form of a record: metadata plus attachment URL
// references. Raw attachment bytes never appear here.
type Document struct {
	ID         string            `json:"id"`
	Collection models.Collection `json:"collection"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	FolderID   string            `json:"folderId,omitempty"`
	Fields     json.RawMessage   `json:"fields"`

	FileURL  string `json:"fileUrl,omitempty"`
	FileExt  string `json:"fileExt,omitempty"`
	AudioURL string `json:"audioUrl,omitempty"`
	AudioExt string `json:"audioExt,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	VideoExt string `json:"videoExt,omitempty"`
}

// Store is the remote document database contract needed by the synchronizer.
type Store interface {
	// Save upserts the document with merge semantics: an empty attachment URL
	// in the payload preserves whatever URL the remote copy already holds.
	Save(ctx context.Context, uid string, doc *Document) error

	// Get returns the document or common.ErrNotFound.
	Get(ctx context.Context, uid string, c models.Collection, id string) (*Document, error)

	// GetAll returns every document of the user's collection.
	GetAll(ctx context.Context, uid string, c models.Collection) ([]*Document, error)

	// Delete removes the document; deleting a nonexistent id is not an error.
	Delete(ctx context.Context, uid string, c models.Collection, id string) error
}

// UserPath is the per-user namespace for a collection. No cross-user reads
// are possible by construction of the path.
func UserPath(uid string, c models.Collection) string {
	return "users/" + uid + "/" + string(c)
}
