package reconcile

import (
	"time"

	"github.com/hyperjump/kagami/internal/models"
)

// buildPayload maps a provider node to the upsert payload. Provider-derived
// fields come from the node; every domain classification field is submitted
// as its empty default. The upsert RPC merge-preserves those fields, so the
// defaults never clobber curated values.
func buildPayload(node *models.Node, path string) *models.MetadataPayload {
	return &models.MetadataPayload{
		DriveID:          node.ID,
		ParentDriveID:    optional(node.Parent()),
		Path:             path,
		MimeType:         node.MimeType,
		Title:            node.Name,
		Checksum:         optional(node.Checksum),
		ModifiedAt:       normalizeTimestamp(node.ModifiedTime),
		Audience:         []string{},
		AgeLevels:        []string{},
		Geographies:      []string{},
		GovernanceModels: []string{},
	}
}

// optional returns nil for the empty string so absent provider fields are
// submitted as SQL NULL rather than "".
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// normalizeTimestamp canonicalises a provider timestamp to RFC 3339. Values
// that fail to parse are submitted as unset rather than failing the upsert.
func normalizeTimestamp(value string) *string {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}
