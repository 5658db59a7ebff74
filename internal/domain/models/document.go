package models

import (
	"time"
)

// Visibility controls who can read a document. Mutation is always
// owner-only regardless of visibility.
type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPublic   Visibility = "public"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityPublic:
		return true
	}
	return false
}

// EntryKind describes how a version entry came to exist.
type EntryKind string

const (
	EntryKindUserEdit    EntryKind = "user-edit"
	EntryKindAIGenerated EntryKind = "ai-generated"
	EntryKindCheckpoint  EntryKind = "checkpoint"
	EntryKindImport      EntryKind = "import"
)

// VersionEntry is one immutable snapshot in a document's history. EntryID is
// client-generated, stable, and never reused; edits create new entries rather
// than mutating old ones.
type VersionEntry struct {
	EntryID   string    `json:"entry_id"`
	Code      string    `json:"code"`
	Timestamp int64     `json:"timestamp"` // Unix milliseconds, client clock
	Label     string    `json:"label"`
	Kind      EntryKind `json:"kind"`
	Prompt    *string   `json:"prompt,omitempty"`
}

// DocumentHistory is the in-memory working state of a document: an ordered
// entry list plus the index the editor is currently showing. Entry order is
// the canonical version order (position = slice index).
type DocumentHistory struct {
	Name         string         `json:"name"`
	Entries      []VersionEntry `json:"entries"`
	CurrentIndex int            `json:"current_index"`
}

// CurrentEntry returns the entry at CurrentIndex, or nil when the history is
// empty or the index is out of range.
func (h *DocumentHistory) CurrentEntry() *VersionEntry {
	if h.CurrentIndex < 0 || h.CurrentIndex >= len(h.Entries) {
		return nil
	}
	return &h.Entries[h.CurrentIndex]
}

// Document is the persisted root record. CurrentCode is a denormalized copy
// of Entries[CurrentIndex].Code so list views never need version rows.
// Counter fields are server-incremented only, never overwritten.
type Document struct {
	ID           string     `json:"id" db:"id"`
	OwnerID      string     `json:"owner_id" db:"owner_id"`
	FolderID     *string    `json:"folder_id" db:"folder_id"` // NULL = not in a folder
	Name         string     `json:"name" db:"name"`
	CurrentCode  string     `json:"current_code" db:"current_code"`
	CurrentIndex int        `json:"current_index" db:"current_index"`
	ForkedFromID *string    `json:"forked_from_id" db:"forked_from_id"`
	ForkDepth    int        `json:"fork_depth" db:"fork_depth"`
	Visibility   Visibility `json:"visibility" db:"visibility"`
	LikeCount    int        `json:"like_count" db:"like_count"`
	ForkCount    int        `json:"fork_count" db:"fork_count"`
	ViewCount    int        `json:"view_count" db:"view_count"`
	CommentCount int        `json:"comment_count" db:"comment_count"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// PersistedVersionEntry mirrors VersionEntry as stored, plus its owning
// document and the position it held at the time of the last sync.
// (document_id, entry_id) is unique; (document_id, position) is unique and
// dense immediately after any successful sync.
type PersistedVersionEntry struct {
	DocumentID string    `json:"document_id" db:"document_id"`
	EntryID    string    `json:"entry_id" db:"entry_id"`
	Position   int       `json:"position" db:"position"`
	Code       string    `json:"code" db:"code"`
	Timestamp  int64     `json:"timestamp" db:"timestamp"`
	Label      string    `json:"label" db:"label"`
	Kind       EntryKind `json:"kind" db:"kind"`
	Prompt     *string   `json:"prompt" db:"prompt"`
}

// CounterField names a document counter column that may be atomically
// incremented server-side.
type CounterField string

const (
	CounterLikes    CounterField = "like_count"
	CounterForks    CounterField = "fork_count"
	CounterViews    CounterField = "view_count"
	CounterComments CounterField = "comment_count"
)

// Valid reports whether c names a known counter column. Repositories refuse
// to interpolate anything else into SQL.
func (c CounterField) Valid() bool {
	switch c {
	case CounterLikes, CounterForks, CounterViews, CounterComments:
		return true
	}
	return false
}
