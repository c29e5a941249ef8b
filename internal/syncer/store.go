package syncer

import (
	"context"

	"github.com/akalniens/keepsync/internal/models"
)

// LocalStore is the subset of the local store the synchronizer needs.
// *localstore.Store satisfies it.
type LocalStore interface {
	Put(ctx context.Context, r *models.Record) (*models.Record, error)
	Get(ctx context.Context, c models.Collection, id string) (*models.Record, error)
	GetAll(ctx context.Context, c models.Collection) ([]*models.Record, error)
	Delete(ctx context.Context, c models.Collection, id string) error
	MarkUploaded(ctx context.Context, c models.Collection, id string, f models.AttachmentField, url string) error
	CacheAttachment(ctx context.Context, c models.Collection, id string, f models.AttachmentField, data []byte) error
}
