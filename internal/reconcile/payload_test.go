package reconcile

import (
	"testing"

	"github.com/hyperjump/kagami/internal/models"
)

func TestBuildPayloadDefaults(t *testing.T) {
	node := &models.Node{
		ID:       "n1",
		Name:     "Handbook",
		MimeType: models.MimeGoogleDoc,
	}
	p := buildPayload(node, "root.n1")

	if p.DriveID != "n1" || p.Title != "Handbook" || p.Path != "root.n1" {
		t.Errorf("identity fields = %+v", p)
	}
	if p.ParentDriveID != nil || p.Checksum != nil || p.ModifiedAt != nil {
		t.Error("absent provider fields must be nil")
	}
	// Classification fields are always submitted as empty defaults, never
	// omitted, so the RPC sees a complete argument list.
	for name, s := range map[string][]string{
		"audience":          p.Audience,
		"age_levels":        p.AgeLevels,
		"geographies":       p.Geographies,
		"governance_models": p.GovernanceModels,
	} {
		if s == nil || len(s) != 0 {
			t.Errorf("%s = %v, want empty non-nil slice", name, s)
		}
	}
	if p.Core {
		t.Error("core must default to false")
	}
}

func TestBuildPayloadProviderFields(t *testing.T) {
	node := &models.Node{
		ID:           "n2",
		Name:         "Budget",
		MimeType:     models.MimeGoogleSheet,
		Parents:      []string{"folder-1"},
		Checksum:     "abc123",
		ModifiedTime: "2026-03-01T10:20:30.500Z",
	}
	p := buildPayload(node, "root.folder-1.n2")

	if p.ParentDriveID == nil || *p.ParentDriveID != "folder-1" {
		t.Errorf("parent = %v", p.ParentDriveID)
	}
	if p.Checksum == nil || *p.Checksum != "abc123" {
		t.Errorf("checksum = %v", p.Checksum)
	}
	if p.ModifiedAt == nil || *p.ModifiedAt != "2026-03-01T10:20:30.5Z" {
		t.Errorf("modified_at = %v", p.ModifiedAt)
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string // "" means nil
	}{
		{"2026-01-02T03:04:05Z", "2026-01-02T03:04:05Z"},
		{"2026-01-02T03:04:05.123Z", "2026-01-02T03:04:05.123Z"},
		{"not-a-timestamp", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := normalizeTimestamp(tt.in)
		if tt.want == "" {
			if got != nil {
				t.Errorf("normalizeTimestamp(%q) = %q, want nil", tt.in, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("normalizeTimestamp(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}
