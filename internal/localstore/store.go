// Package localstore provides the always-available, SQLite-backed store that
// owns the canonical offline copy of every record. It is the only component
// the UI reads from directly; it never touches the network.
//
// Write failures here are durability failures and always surface to the
// caller.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akalniens/keepsync/internal/common"
	"github.com/akalniens/keepsync/internal/dbx"
	"github.com/akalniens/keepsync/internal/models"
)

// Store persists records and folders keyed by (collection, id).
type Store struct {
	db *sql.DB
}

// New returns a Store bound to the given database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func attachmentCols(a *models.Attachment) (data []byte, url, ext string, pending bool) {
	if a == nil {
		return nil, "", "", false
	}
	return a.Data, a.URL, a.Ext, a.Pending
}

func attachmentFromCols(data []byte, url, ext string, pending bool) *models.Attachment {
	if data == nil && url == "" && ext == "" && !pending {
		return nil
	}
	return &models.Attachment{Data: data, URL: url, Ext: ext, Pending: pending}
}

// Put writes or overwrites the record by id and returns the stored record.
// It never fails due to network state.
func (s *Store) Put(ctx context.Context, r *models.Record) (*models.Record, error) {
	fields := r.Fields
	if fields == nil {
		fields = json.RawMessage(`{}`)
	}

	fData, fURL, fExt, fPending := attachmentCols(r.File)
	aData, aURL, aExt, aPending := attachmentCols(r.Audio)
	vData, vURL, vExt, vPending := attachmentCols(r.Video)

	query := `INSERT INTO records (collection, id, updated_at, folder_id, fields,
			file_data, file_url, file_ext, file_pending,
			audio_data, audio_url, audio_ext, audio_pending,
			video_data, video_url, video_ext, video_pending)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			updated_at = excluded.updated_at,
			folder_id = excluded.folder_id,
			fields = excluded.fields,
			file_data = excluded.file_data,
			file_url = excluded.file_url,
			file_ext = excluded.file_ext,
			file_pending = excluded.file_pending,
			audio_data = excluded.audio_data,
			audio_url = excluded.audio_url,
			audio_ext = excluded.audio_ext,
			audio_pending = excluded.audio_pending,
			video_data = excluded.video_data,
			video_url = excluded.video_url,
			video_ext = excluded.video_ext,
			video_pending = excluded.video_pending
	`
	_, err := s.db.ExecContext(ctx, query,
		string(r.Collection), r.ID, r.UpdatedAt.UTC().Format(time.RFC3339Nano), r.FolderID, string(fields),
		fData, fURL, fExt, fPending,
		aData, aURL, aExt, aPending,
		vData, vURL, vExt, vPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert record: %w", err)
	}
	return r, nil
}

const recordColumns = `collection, id, updated_at, folder_id, fields,
	file_data, file_url, file_ext, file_pending,
	audio_data, audio_url, audio_ext, audio_pending,
	video_data, video_url, video_ext, video_pending`

func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	var (
		collection, id, updatedAt, folderID, fields string

		fData, aData, vData []byte
		fURL, fExt          string
		aURL, aExt          string
		vURL, vExt          string
		fPending, aPending  bool
		vPending            bool
	)

	err := scan(&collection, &id, &updatedAt, &folderID, &fields,
		&fData, &fURL, &fExt, &fPending,
		&aData, &aURL, &aExt, &aPending,
		&vData, &vURL, &vExt, &vPending)
	if err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad updated_at for %s/%s: %w", collection, id, err)
	}

	return &models.Record{
		ID:         id,
		Collection: models.Collection(collection),
		UpdatedAt:  ts,
		FolderID:   folderID,
		Fields:     json.RawMessage(fields),
		File:       attachmentFromCols(fData, fURL, fExt, fPending),
		Audio:      attachmentFromCols(aData, aURL, aExt, aPending),
		Video:      attachmentFromCols(vData, vURL, vExt, vPending),
	}, nil
}

// Get returns the record or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, c models.Collection, id string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE collection = ? AND id = ?`
	row := s.db.QueryRowContext(ctx, query, string(c), id)

	r, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return r, nil
}

// GetAll returns all records of the collection, order unspecified.
func (s *Store) GetAll(ctx context.Context, c models.Collection) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE collection = ?`
	rows, err := s.db.QueryContext(ctx, query, string(c))
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the record. Deleting a nonexistent id is not an error.
func (s *Store) Delete(ctx context.Context, c models.Collection, id string) error {
	query := `DELETE FROM records WHERE collection = ? AND id = ?`
	if _, err := s.db.ExecContext(ctx, query, string(c), id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func attachmentColPrefix(f models.AttachmentField) (string, error) {
	switch f {
	case models.FieldFile:
		return "file", nil
	case models.FieldAudio:
		return "audio", nil
	case models.FieldVideo:
		return "video", nil
	}
	return "", fmt.Errorf("unknown attachment field %q", f)
}

// MarkUploaded records a confirmed upload: sets the remote URL and clears the
// pending flag, leaving the cached bytes in place.
func (s *Store) MarkUploaded(ctx context.Context, c models.Collection, id string, f models.AttachmentField, url string) error {
	col, err := attachmentColPrefix(f)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE records SET %s_url = ?, %s_pending = 0 WHERE collection = ? AND id = ?`, col, col)
	if _, err := s.db.ExecContext(ctx, query, url, string(c), id); err != nil {
		return fmt.Errorf("failed to mark attachment uploaded: %w", err)
	}
	return nil
}

// CacheAttachment stores bytes fetched from the blob store, keeping the URL
// intact for future pushes. The buffer is a cache, not a new edit, so the
// pending flag stays clear.
func (s *Store) CacheAttachment(ctx context.Context, c models.Collection, id string, f models.AttachmentField, data []byte) error {
	col, err := attachmentColPrefix(f)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`UPDATE records SET %s_data = ?, %s_pending = 0 WHERE collection = ? AND id = ?`, col, col)
	if _, err := s.db.ExecContext(ctx, query, data, string(c), id); err != nil {
		return fmt.Errorf("failed to cache attachment: %w", err)
	}
	return nil
}

// PutFolder writes or overwrites a folder by id.
func (s *Store) PutFolder(ctx context.Context, f *models.Folder) error {
	query := `INSERT INTO folders (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`
	_, err := s.db.ExecContext(ctx, query, f.ID, f.Name, f.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert folder: %w", err)
	}
	return nil
}

// GetFolders returns all folders.
func (s *Store) GetFolders(ctx context.Context) ([]*models.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM folders`)
	if err != nil {
		return nil, fmt.Errorf("failed to select folders: %w", err)
	}
	defer rows.Close()

	var result []*models.Folder
	for rows.Next() {
		var f models.Folder
		var createdAt string
		if err := rows.Scan(&f.ID, &f.Name, &createdAt); err != nil {
			return nil, err
		}
		f.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("bad created_at for folder %s: %w", f.ID, err)
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteFolder removes the folder and reassigns its records to root, in one
// transaction. Deleting a nonexistent id is not an error.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE records SET folder_id = '' WHERE folder_id = ?`, id); err != nil {
			return fmt.Errorf("failed to reassign records: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}
		return nil
	})
}
