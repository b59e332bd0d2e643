// Package models defines core data structures for provider nodes, metadata
// payloads, and text chunks.
package models

// Google Workspace MIME types relevant to classification and export.
const (
	MimeFolder       = "application/vnd.google-apps.folder"
	MimeGoogleDoc    = "application/vnd.google-apps.document"
	MimeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeGoogleSlides = "application/vnd.google-apps.presentation"
)

// Export target formats for Google Workspace files.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// Node is a single entry in the storage provider's hierarchy, read fresh from
// the provider on every reconciliation. It is never cached across requests.
type Node struct {
	ID           string
	Name         string
	MimeType     string
	Parents      []string
	Checksum     string
	ModifiedTime string
}

// IsFolder reports whether the node is a folder, derived from its MIME type.
func (n *Node) IsFolder() bool {
	return n.MimeType == MimeFolder
}

// Parent returns the node's effective parent id. Drive allows multiple
// parents; only the first is used for path derivation.
func (n *Node) Parent() string {
	if len(n.Parents) == 0 {
		return ""
	}
	return n.Parents[0]
}

// ChangeEvent is one entry of a webhook change batch. The provider sends the
// node reference as "fileId"; older payloads use "id".
type ChangeEvent struct {
	FileID string `json:"fileId"`
	ID     string `json:"id"`
}

// NodeID returns the referenced node id, preferring the fileId field.
func (c ChangeEvent) NodeID() string {
	if c.FileID != "" {
		return c.FileID
	}
	return c.ID
}

// MetadataPayload is the argument set of the upsert_file_metadata RPC.
// Provider-derived fields are populated from the Node; the domain
// classification fields below Core are not derived from the provider and are
// always submitted as empty/unset by this pipeline. The RPC is expected to be
// merge-preserving on those fields.
type MetadataPayload struct {
	DriveID          string   `json:"p_drive_id"`
	ParentDriveID    *string  `json:"p_parent_drive_id"`
	Path             string   `json:"p_path"`
	MimeType         string   `json:"p_mime_type"`
	Title            string   `json:"p_title"`
	Checksum         *string  `json:"p_checksum"`
	ModifiedAt       *string  `json:"p_modified_at"`
	LastReviewedAt   *string  `json:"p_last_reviewed_at"`
	Core             bool     `json:"p_core"`
	Audience         []string `json:"p_audience"`
	AgeLevels        []string `json:"p_age_levels"`
	Geographies      []string `json:"p_geographies"`
	GovernanceModels []string `json:"p_governance_models"`
	Vouchers         *string  `json:"p_vouchers"`
	CreatedBy        *string  `json:"p_created_by"`
	MaintainedBy     *string  `json:"p_maintained_by"`
	RawExportPath    *string  `json:"p_raw_export_path"`
}
