// Package store persists node metadata and chunk sets in the metadata store.
package store

import (
	"context"

	"github.com/hyperjump/kagami/internal/models"
)

// Approval is one pending review row from the approvals read path. The row
// shape is owned by the persistence layer; this pipeline only relays it.
type Approval map[string]any

// Store is the write and read surface of the persistence layer used by the
// reconciliation pipeline.
type Store interface {
	// UpsertMetadata reconciles one node's attributes and returns the
	// stable internal record id. Idempotent: repeated calls with the same
	// payload return the same id.
	UpsertMetadata(ctx context.Context, payload *models.MetadataPayload) (string, error)

	// ReplaceChunks atomically replaces the record's whole chunk set:
	// previous chunks are deleted, then the new set is inserted. An empty
	// set leaves the record with no chunks.
	ReplaceChunks(ctx context.Context, recordID string, chunks []models.Chunk) error

	// RecordCursor stores the resumption cursor for incremental change
	// polling.
	RecordCursor(ctx context.Context, token string) error

	// StoreFeedback persists one feedback payload from the review surface.
	StoreFeedback(ctx context.Context, payload map[string]any) error

	// FetchPendingApprovals lists answers awaiting review.
	FetchPendingApprovals(ctx context.Context) ([]Approval, error)
}
