// Package models defines the synchronizable data model: records, folders,
// per-collection payload types and binary attachments.
package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/akalniens/keepsync/internal/common"
)

// Collection names a partition of records sharing one schema. Each collection
// maps 1:1 to one local table partition and one remote collection path.
type Collection string

const (
	CollectionArticles  Collection = "articles"
	CollectionNotes     Collection = "notes"
	CollectionQuestions Collection = "questions"
	CollectionWorkouts  Collection = "workouts"
	CollectionPositions Collection = "positions"
)

// Collections returns every known collection, in a stable order.
func Collections() []Collection {
	return []Collection{
		CollectionArticles,
		CollectionNotes,
		CollectionQuestions,
		CollectionWorkouts,
		CollectionPositions,
	}
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range Collections() {
		if c == known {
			return true
		}
	}
	return false
}

// AttachmentField names one of the binary-bearing fields of a record.
type AttachmentField string

const (
	FieldFile  AttachmentField = "file"
	FieldAudio AttachmentField = "audio"
	FieldVideo AttachmentField = "video"
)

// AttachmentFields returns every attachment field, in a stable order.
func AttachmentFields() []AttachmentField {
	return []AttachmentField{FieldFile, FieldAudio, FieldVideo}
}

// Attachment is a binary payload associated with a record. Locally it may
// hold raw bytes; remotely it is referenced by URL only. Pending marks a raw
// buffer that has not been uploaded yet.
type Attachment struct {
	// Data is the locally cached raw payload, nil if never set or not fetched.
	Data []byte

	// URL is the remote object reference, empty until the first confirmed upload.
	URL string

	// Ext is the file extension used to build the deterministic storage key.
	Ext string

	// Pending is true while Data holds bytes newer than the uploaded copy.
	Pending bool
}

// SetData replaces the raw buffer and marks the attachment for upload.
func (a *Attachment) SetData(data []byte, ext string) {
	a.Data = data
	a.Ext = ext
	a.Pending = true
}

// Record is the unit of synchronization.
type Record struct {
	// ID is immutable and never reused, assigned by the creator.
	ID string

	// Collection identifies the record's schema.
	Collection Collection

	// UpdatedAt is stamped on every write; the copy with the greater value
	// wins on merge.
	UpdatedAt time.Time

	// FolderID is a weak reference to a Folder, empty means root.
	FolderID string

	// Fields carries the collection-specific payload.
	Fields json.RawMessage

	File  *Attachment
	Audio *Attachment
	Video *Attachment
}

// NewRecordID returns a timestamp-derived identifier.
func NewRecordID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// NewRecord builds a record for the given collection with a fresh id and
// timestamp. The payload type must match the collection.
func NewRecord(c Collection, payload any) (*Record, error) {
	if !c.Valid() {
		return nil, common.ErrUnknownCollection
	}
	fields, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:         NewRecordID(),
		Collection: c,
		UpdatedAt:  time.Now().UTC(),
		Fields:     fields,
	}, nil
}

// Attachment returns the named attachment or nil if it was never set.
func (r *Record) Attachment(f AttachmentField) *Attachment {
	switch f {
	case FieldFile:
		return r.File
	case FieldAudio:
		return r.Audio
	case FieldVideo:
		return r.Video
	}
	return nil
}

// EnsureAttachment returns the named attachment, allocating it if needed.
func (r *Record) EnsureAttachment(f AttachmentField) *Attachment {
	if a := r.Attachment(f); a != nil {
		return a
	}
	a := &Attachment{}
	switch f {
	case FieldFile:
		r.File = a
	case FieldAudio:
		r.Audio = a
	case FieldVideo:
		r.Video = a
	}
	return a
}

// Touch stamps the record as modified now. Call on every local write.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// Unwrap decodes Fields into the typed payload for the record's collection.
func (r *Record) Unwrap() (any, error) {
	switch r.Collection {
	case CollectionArticles:
		var v Article
		return v, json.Unmarshal(r.Fields, &v)
	case CollectionNotes:
		var v Note
		return v, json.Unmarshal(r.Fields, &v)
	case CollectionQuestions:
		var v Question
		return v, json.Unmarshal(r.Fields, &v)
	case CollectionWorkouts:
		var v Workout
		return v, json.Unmarshal(r.Fields, &v)
	case CollectionPositions:
		var v Position
		return v, json.Unmarshal(r.Fields, &v)
	default:
		var m map[string]any
		if err := json.Unmarshal(r.Fields, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Article is a saved document with an optional PDF attachment.
type Article struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	SourceURL string `json:"sourceUrl,omitempty"`
}

// Note stores free-form text.
type Note struct {
	Text string `json:"text"`
}

// Question is a generated Q&A item.
type Question struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Workout is a logged training session, optionally with recorded media.
type Workout struct {
	Activity    string `json:"activity"`
	DurationMin int    `json:"durationMin"`
	Notes       string `json:"notes,omitempty"`
}

// Position is a financial holding.
type Position struct {
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
	CostBasis float64 `json:"costBasis"`
}
