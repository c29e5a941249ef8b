package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder is a named grouping entity. Records reference at most one folder by
// id; deleting a folder reassigns its records to root rather than cascading.
type Folder struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewFolder builds a folder with a fresh id and timestamp.
func NewFolder(name string) *Folder {
	return &Folder{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
