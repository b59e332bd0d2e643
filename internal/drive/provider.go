// Package drive reads the document tree from Google Drive.
package drive

import (
	"context"
	"errors"

	"github.com/hyperjump/kagami/internal/models"
)

// ErrNotFound indicates a node that does not exist or is no longer
// accessible. Callers treat it as a benign condition: deletions and
// permission revocations are expected between a change notification and its
// processing.
var ErrNotFound = errors.New("drive: node not found")

// Provider is the read-only surface of the storage provider.
type Provider interface {
	// GetNode resolves a single node by id. Returns ErrNotFound for absent
	// or inaccessible nodes.
	GetNode(ctx context.Context, id string) (*models.Node, error)

	// ListChildren returns every immediate child of parentID, exhausting
	// provider pagination before returning.
	ListChildren(ctx context.Context, parentID string) ([]*models.Node, error)

	// ExportText exports a Google Workspace file as text in the given
	// target format (e.g. text/plain, text/csv).
	ExportText(ctx context.Context, id, mimeType string) (string, error)

	// DownloadRaw downloads a regular file's bytes.
	DownloadRaw(ctx context.Context, id string) ([]byte, error)
}
