// Package store is the persistence boundary for documents. Providers share
// one small interface so the editor can save to a local file, an in-memory
// map, Redis, MongoDB, or a remote HTTP service without caring which.
package store

import (
	"context"
	"time"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/scene"
)

// Store persists documents by id.
type Store interface {
	// Save writes the document, overwriting any existing one with the same id.
	Save(ctx context.Context, doc *scene.Document) error
	// Load returns the document or ErrCodeDocumentNotFound.
	Load(ctx context.Context, id string) (*scene.Document, error)
	// List returns metadata for every stored document.
	List(ctx context.Context) ([]Info, error)
	// Delete removes the document. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Close releases provider resources.
	Close() error
}

// Info is document metadata without the object payload.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	SizeBytes int       `json:"sizeBytes"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InfoOf extracts listing metadata from a document.
func InfoOf(doc *scene.Document) Info {
	return Info{
		ID:        doc.ID,
		Name:      doc.Name,
		Version:   doc.Version,
		SizeBytes: doc.SizeBytes,
		UpdatedAt: doc.UpdatedAt,
	}
}

// SyncStatus is the editor-visible persistence state.
type SyncStatus int

const (
	SyncIdle SyncStatus = iota
	SyncSaving
	SyncSynced
	SyncError
)

var syncNames = map[SyncStatus]string{
	SyncIdle:   "idle",
	SyncSaving: "saving",
	SyncSynced: "synced",
	SyncError:  "error",
}

func (s SyncStatus) String() string {
	if n, ok := syncNames[s]; ok {
		return n
	}
	return "unknown"
}

// validateDoc rejects documents a provider cannot key.
func validateDoc(doc *scene.Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}
	return errors.ValidateDocumentID(doc.ID)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", id)
}
