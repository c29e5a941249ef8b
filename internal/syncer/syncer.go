// Package syncer implements the reconciliation engine between the local
// store and the remote document store: pushes local mutations, pulls remote
// ones, and merges with a whole-record last-writer-wins rule.
//
// It is the only component that moves data between the two stores. Remote
// failures are soft: the local operation that triggered a push must never
// fail because of them. Local store failures are durability failures and
// always propagate.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/akalniens/keepsync/internal/common"
	"github.com/akalniens/keepsync/internal/identity"
	"github.com/akalniens/keepsync/internal/logging"
	"github.com/akalniens/keepsync/internal/models"
	"github.com/akalniens/keepsync/internal/remote"
)

// DefaultMetadataTimeout bounds every remote metadata call.
const DefaultMetadataTimeout = 5 * time.Second

// Synchronizer reconciles one local store with one remote store.
type Synchronizer struct {
	local       LocalStore
	remote      remote.Store
	lifecycle   *Lifecycle
	ids         identity.Provider
	log         logging.Logger
	metaTimeout time.Duration
}

// New builds a Synchronizer. metaTimeout <= 0 falls back to
// DefaultMetadataTimeout.
func New(local LocalStore, rs remote.Store, lc *Lifecycle, ids identity.Provider, log logging.Logger, metaTimeout time.Duration) *Synchronizer {
	if metaTimeout <= 0 {
		metaTimeout = DefaultMetadataTimeout
	}
	return &Synchronizer{
		local:       local,
		remote:      rs,
		lifecycle:   lc,
		ids:         ids,
		log:         log,
		metaTimeout: metaTimeout,
	}
}

// Lifecycle exposes the blob lifecycle manager for explicit attachment
// access (lazy fetch).
func (s *Synchronizer) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// PushRecord sends one record's metadata to the remote store, resolving
// binary fields through the blob lifecycle manager first. A missing or
// anonymous identity makes this a successful no-op; a remote failure is
// logged and swallowed. Only a local durability failure returns an error.
func (s *Synchronizer) PushRecord(ctx context.Context, r *models.Record) error {
	id, ok := identity.CanSync(s.ids)
	if !ok {
		return nil
	}

	doc, err := s.lifecycle.PrepareOutbound(ctx, r)
	if err != nil {
		return err
	}

	mctx, cancel := context.WithTimeout(ctx, s.metaTimeout)
	defer cancel()
	if err := s.remote.Save(mctx, id.UID, doc); err != nil {
		s.log.Warn(ctx, "remote save failed", "collection", r.Collection, "id", r.ID, "error", err)
	}
	return nil
}

// DeleteRecord removes the record locally (fatal on failure) and then
// best-effort deletes the remote copy and its blobs when authenticated.
// Deletions are not propagated between devices; see the package notes.
func (s *Synchronizer) DeleteRecord(ctx context.Context, c models.Collection, recordID string) error {
	r, err := s.local.Get(ctx, c, recordID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.local.Delete(ctx, c, recordID); err != nil {
		return err
	}

	id, ok := identity.CanSync(s.ids)
	if !ok {
		return nil
	}

	mctx, cancel := context.WithTimeout(ctx, s.metaTimeout)
	defer cancel()
	if err := s.remote.Delete(mctx, id.UID, c, recordID); err != nil {
		s.log.Warn(ctx, "remote delete failed", "collection", c, "id", recordID, "error", err)
	}
	s.lifecycle.DeleteBlobs(ctx, r)
	return nil
}

// PullAll fetches every remote document of the collection and merges it into
// the local store. A record is inserted if absent locally and overwritten
// only if the remote copy is strictly newer. Records absent remotely are
// never deleted locally. Per-record failures are isolated; the rest of the
// collection still merges.
//
// Returns the number of records inserted or updated locally.
func (s *Synchronizer) PullAll(ctx context.Context, c models.Collection) (int, error) {
	id, ok := identity.CanSync(s.ids)
	if !ok {
		return 0, nil
	}

	mctx, cancel := context.WithTimeout(ctx, s.metaTimeout)
	docs, err := s.remote.GetAll(mctx, id.UID, c)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("remote list failed for %s: %w", c, err)
	}

	var merged int
	var errs error
	for _, doc := range docs {
		changed, err := s.mergeOne(ctx, doc)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("merge %s/%s: %w", c, doc.ID, err))
			continue
		}
		if changed {
			merged++
		}
	}

	if errs != nil {
		s.log.Warn(ctx, "pull finished with isolated record failures",
			"collection", c, "failed", len(multierr.Errors(errs)), "error", errs)
	}
	return merged, nil
}

func (s *Synchronizer) mergeOne(ctx context.Context, doc *remote.Document) (bool, error) {
	local, err := s.local.Get(ctx, doc.Collection, doc.ID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		_, err := s.local.Put(ctx, docToRecord(doc))
		return err == nil, err
	case err != nil:
		return false, err
	}

	// whole-record LWW: remote wins only when strictly newer
	if !doc.UpdatedAt.After(local.UpdatedAt) {
		return false, nil
	}

	r := docToRecord(doc)
	// a locally cached buffer stays valid while the URL is unchanged
	for _, f := range models.AttachmentFields() {
		la, ra := local.Attachment(f), r.Attachment(f)
		if la != nil && ra != nil && la.URL == ra.URL {
			ra.Data = la.Data
		}
	}
	_, err = s.local.Put(ctx, r)
	return err == nil, err
}

func docToRecord(doc *remote.Document) *models.Record {
	return &models.Record{
		ID:         doc.ID,
		Collection: doc.Collection,
		UpdatedAt:  doc.UpdatedAt,
		FolderID:   doc.FolderID,
		Fields:     doc.Fields,
		File:       remoteAttachment(doc.FileURL, doc.FileExt),
		Audio:      remoteAttachment(doc.AudioURL, doc.AudioExt),
		Video:      remoteAttachment(doc.VideoURL, doc.VideoExt),
	}
}

func remoteAttachment(url, ext string) *models.Attachment {
	if url == "" && ext == "" {
		return nil
	}
	return &models.Attachment{URL: url, Ext: ext}
}

// PushAllLocal pushes the whole local collection, used for full
// re-synchronization. Individual record failures are isolated and
// aggregated; the batch always runs to completion.
//
// Returns the number of records pushed.
func (s *Synchronizer) PushAllLocal(ctx context.Context, c models.Collection) (int, error) {
	if _, ok := identity.CanSync(s.ids); !ok {
		return 0, nil
	}

	recs, err := s.local.GetAll(ctx, c)
	if err != nil {
		return 0, err
	}

	var pushed int
	var errs error
	for _, r := range recs {
		if err := s.PushRecord(ctx, r); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("push %s/%s: %w", c, r.ID, err))
			continue
		}
		pushed++
	}
	return pushed, errs
}
