package blob

import (
	"testing"

	"github.com/akalniens/keepsync/internal/models"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	p := ObjectPath(models.CollectionArticles, "1700000000000", models.FieldFile, "pdf")
	require.Equal(t, "articles/1700000000000/file.pdf", p)
}

func TestObjectPath_NoExt(t *testing.T) {
	p := ObjectPath(models.CollectionWorkouts, "42", models.FieldAudio, "")
	require.Equal(t, "workouts/42/audio", p)
}

func TestObjectPath_Deterministic(t *testing.T) {
	a := ObjectPath(models.CollectionNotes, "id1", models.FieldVideo, "mp4")
	b := ObjectPath(models.CollectionNotes, "id1", models.FieldVideo, "mp4")
	require.Equal(t, a, b)
}

func TestKeyFromURL(t *testing.T) {
	s := &S3Store{bucket: "keepsync", baseURL: "http://localhost:9000"}

	key, err := s.keyFromURL("http://localhost:9000/keepsync/articles/1/file.pdf")
	require.NoError(t, err)
	require.Equal(t, "articles/1/file.pdf", key)
}

func TestKeyFromURL_WrongBucket(t *testing.T) {
	s := &S3Store{bucket: "keepsync", baseURL: "http://localhost:9000"}

	_, err := s.keyFromURL("http://localhost:9000/other/articles/1/file.pdf")
	require.Error(t, err)
}

func TestURLRoundTrip(t *testing.T) {
	s := &S3Store{bucket: "keepsync", baseURL: "http://localhost:9000"}

	path := ObjectPath(models.CollectionArticles, "9", models.FieldFile, "pdf")
	url := s.urlFor(path)
	key, err := s.keyFromURL(url)
	require.NoError(t, err)
	require.Equal(t, path, key)
}
