package syncer

import (
	"context"
	"time"

	"github.com/akalniens/keepsync/internal/blob"
	"github.com/akalniens/keepsync/internal/common"
	"github.com/akalniens/keepsync/internal/logging"
	"github.com/akalniens/keepsync/internal/models"
	"github.com/akalniens/keepsync/internal/remote"
)

// Lifecycle keeps binary payloads out of the document synchronization path.
// Outbound, it uploads pending buffers and substitutes URLs; inbound, blobs
// are fetched lazily on explicit access, never eagerly.
type Lifecycle struct {
	local       LocalStore
	blobs       blob.Store
	log         logging.Logger
	blobTimeout time.Duration
}

// NewLifecycle builds a lifecycle manager. blobTimeout bounds every blob
// transfer; tens of seconds is appropriate for large payloads.
func NewLifecycle(local LocalStore, blobs blob.Store, log logging.Logger, blobTimeout time.Duration) *Lifecycle {
	return &Lifecycle{local: local, blobs: blobs, log: log, blobTimeout: blobTimeout}
}

// PrepareOutbound builds the metadata document for a push. Pending buffers
// are uploaded first; on upload failure the push proceeds with whatever URL
// is currently known and the buffer stays pending for the next cycle. Raw
// bytes never enter the returned document.
//
// The only fatal error is a local store write failure while recording a
// confirmed upload.
func (l *Lifecycle) PrepareOutbound(ctx context.Context, r *models.Record) (*remote.Document, error) {
	doc := &remote.Document{
		ID:         r.ID,
		Collection: r.Collection,
		UpdatedAt:  r.UpdatedAt,
		FolderID:   r.FolderID,
		Fields:     r.Fields,
	}

	for _, f := range models.AttachmentFields() {
		a := r.Attachment(f)
		if a == nil {
			continue
		}

		if a.Pending && a.Data != nil {
			path := blob.ObjectPath(r.Collection, r.ID, f, a.Ext)
			bctx, cancel := context.WithTimeout(ctx, l.blobTimeout)
			url, err := l.blobs.Upload(bctx, path, a.Data)
			cancel()
			if err != nil {
				l.log.Warn(ctx, "attachment upload failed, pushing metadata without it",
					"collection", r.Collection, "id", r.ID, "field", f, "error", err)
			} else {
				if err := l.local.MarkUploaded(ctx, r.Collection, r.ID, f, url); err != nil {
					return nil, err
				}
				a.URL = url
				a.Pending = false
			}
		}

		switch f {
		case models.FieldFile:
			doc.FileURL, doc.FileExt = a.URL, a.Ext
		case models.FieldAudio:
			doc.AudioURL, doc.AudioExt = a.URL, a.Ext
		case models.FieldVideo:
			doc.VideoURL, doc.VideoExt = a.URL, a.Ext
		}
	}

	return doc, nil
}

// Fetch returns the attachment bytes for explicit user access. Locally
// cached bytes are served as-is; otherwise the blob is downloaded, cached
// into the local store, and the URL left intact for future pushes.
func (l *Lifecycle) Fetch(ctx context.Context, c models.Collection, id string, f models.AttachmentField) ([]byte, error) {
	r, err := l.local.Get(ctx, c, id)
	if err != nil {
		return nil, err
	}

	a := r.Attachment(f)
	if a == nil {
		return nil, common.ErrNoRemoteBlob
	}
	if a.Data != nil {
		return a.Data, nil
	}
	if a.URL == "" {
		return nil, common.ErrNoRemoteBlob
	}

	bctx, cancel := context.WithTimeout(ctx, l.blobTimeout)
	defer cancel()
	data, err := l.blobs.Download(bctx, a.URL)
	if err != nil {
		return nil, err
	}

	if err := l.local.CacheAttachment(ctx, c, id, f, data); err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteBlobs removes a record's uploaded objects. Best-effort: failures are
// logged and never fatal to the record deletion that triggered them.
func (l *Lifecycle) DeleteBlobs(ctx context.Context, r *models.Record) {
	for _, f := range models.AttachmentFields() {
		a := r.Attachment(f)
		if a == nil || a.URL == "" {
			continue
		}
		path := blob.ObjectPath(r.Collection, r.ID, f, a.Ext)
		bctx, cancel := context.WithTimeout(ctx, l.blobTimeout)
		err := l.blobs.Delete(bctx, path)
		cancel()
		if err != nil {
			l.log.Warn(ctx, "blob delete failed",
				"collection", r.Collection, "id", r.ID, "field", f, "error", err)
		}
	}
}
