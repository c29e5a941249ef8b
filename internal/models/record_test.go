package models

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRecord_UnknownCollection(t *testing.T) {
	_, err := NewRecord(Collection("bogus"), Note{Text: "x"})
	require.Error(t, err)
}

func TestNewRecord_AssignsIDAndTimestamp(t *testing.T) {
	before := time.Now().UTC()
	r, err := NewRecord(CollectionNotes, Note{Text: "hello"})
	require.NoError(t, err)

	require.NotEmpty(t, r.ID)
	ms, err := strconv.ParseInt(r.ID, 10, 64)
	require.NoError(t, err)
	require.GreaterOrEqual(t, ms, before.UnixMilli())
	require.False(t, r.UpdatedAt.Before(before.Truncate(time.Second)))
}

func TestRecord_UnwrapPerCollection(t *testing.T) {
	cases := []struct {
		collection Collection
		payload    any
	}{
		{CollectionArticles, Article{Title: "t", Body: "b", SourceURL: "https://ex"}},
		{CollectionNotes, Note{Text: "n"}},
		{CollectionQuestions, Question{Prompt: "p", Answer: "a"}},
		{CollectionWorkouts, Workout{Activity: "run", DurationMin: 30}},
		{CollectionPositions, Position{Symbol: "VOO", Quantity: 2.5, CostBasis: 410.0}},
	}

	for _, tc := range cases {
		t.Run(string(tc.collection), func(t *testing.T) {
			r, err := NewRecord(tc.collection, tc.payload)
			require.NoError(t, err)

			got, err := r.Unwrap()
			require.NoError(t, err)
			require.Equal(t, tc.payload, got)
		})
	}
}

func TestRecord_UnwrapUnknownCollectionReturnsMap(t *testing.T) {
	r := &Record{Collection: Collection("legacy"), Fields: []byte(`{"a":1}`)}
	got, err := r.Unwrap()
	require.NoError(t, err)
	_, ok := got.(map[string]any)
	require.True(t, ok)
}

func TestRecord_EnsureAttachment(t *testing.T) {
	r := &Record{Collection: CollectionArticles}
	require.Nil(t, r.Attachment(FieldFile))

	a := r.EnsureAttachment(FieldFile)
	a.SetData([]byte("pdf-bytes"), "pdf")

	got := r.Attachment(FieldFile)
	require.Same(t, a, got)
	require.True(t, got.Pending)
	require.Equal(t, "pdf", got.Ext)

	// second call must not replace the existing attachment
	require.Same(t, a, r.EnsureAttachment(FieldFile))
}

func TestRecord_Touch(t *testing.T) {
	r := &Record{UpdatedAt: time.Unix(0, 0)}
	r.Touch()
	require.True(t, r.UpdatedAt.After(time.Unix(0, 0)))
	require.Equal(t, time.UTC, r.UpdatedAt.Location())
}

func TestNewFolder(t *testing.T) {
	f := NewFolder("inbox")
	require.NotEmpty(t, f.ID)
	require.Equal(t, "inbox", f.Name)
	require.False(t, f.CreatedAt.IsZero())
}
