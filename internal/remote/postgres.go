package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akalniens/keepsync/internal/common"
	"github.com/akalniens/keepsync/internal/models"
	"github.com/akalniens/keepsync/internal/remote/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements Store over a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and applies migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Save upserts the document by (user_path, id). Empty attachment URLs in the
// payload preserve the URLs already stored remotely, so a push after a failed
// upload cannot erase a previously confirmed reference.
func (s *PostgresStore) Save(ctx context.Context, uid string, doc *Document) error {
	fields := doc.Fields
	if fields == nil {
		fields = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO documents (user_path, id, updated_at, folder_id, fields,
			file_url, file_ext, audio_url, audio_ext, video_url, video_ext)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_path, id)
		DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			folder_id = EXCLUDED.folder_id,
			fields = EXCLUDED.fields,
			file_url = CASE WHEN EXCLUDED.file_url = '' THEN documents.file_url ELSE EXCLUDED.file_url END,
			file_ext = CASE WHEN EXCLUDED.file_ext = '' THEN documents.file_ext ELSE EXCLUDED.file_ext END,
			audio_url = CASE WHEN EXCLUDED.audio_url = '' THEN documents.audio_url ELSE EXCLUDED.audio_url END,
			audio_ext = CASE WHEN EXCLUDED.audio_ext = '' THEN documents.audio_ext ELSE EXCLUDED.audio_ext END,
			video_url = CASE WHEN EXCLUDED.video_url = '' THEN documents.video_url ELSE EXCLUDED.video_url END,
			video_ext = CASE WHEN EXCLUDED.video_ext = '' THEN documents.video_ext ELSE EXCLUDED.video_ext END
	`
	_, err := s.db.ExecContext(ctx, query,
		UserPath(uid, doc.Collection), doc.ID, doc.UpdatedAt.UTC(), doc.FolderID, string(fields),
		doc.FileURL, doc.FileExt, doc.AudioURL, doc.AudioExt, doc.VideoURL, doc.VideoExt)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

const documentColumns = `id, updated_at, folder_id, fields,
	file_url, file_ext, audio_url, audio_ext, video_url, video_ext`

func scanDocument(c models.Collection, scan func(dest ...any) error) (*Document, error) {
	var d Document
	var fields []byte
	if err := scan(&d.ID, &d.UpdatedAt, &d.FolderID, &fields,
		&d.FileURL, &d.FileExt, &d.AudioURL, &d.AudioExt, &d.VideoURL, &d.VideoExt); err != nil {
		return nil, err
	}
	d.Collection = c
	d.Fields = json.RawMessage(fields)
	return &d, nil
}

// Get returns a single document or common.ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, uid string, c models.Collection, id string) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_path = $1 AND id = $2`
	row := s.db.QueryRowContext(ctx, query, UserPath(uid, c), id)

	d, err := scanDocument(c, row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return d, nil
}

// GetAll returns every document under the user's collection path.
func (s *PostgresStore) GetAll(ctx context.Context, uid string, c models.Collection) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_path = $1`
	rows, err := s.db.QueryContext(ctx, query, UserPath(uid, c))
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []*Document
	for rows.Next() {
		d, err := scanDocument(c, rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the document. Idempotent.
func (s *PostgresStore) Delete(ctx context.Context, uid string, c models.Collection, id string) error {
	query := `DELETE FROM documents WHERE user_path = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, UserPath(uid, c), id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
