package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func TestListChildren_paginationExhaustion(t *testing.T) {
	var requests int
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		token := r.URL.Query().Get("pageToken")
		tokens = append(tokens, token)
		w.Header().Set("Content-Type", "application/json")
		switch token {
		case "":
			fmt.Fprint(w, `{"files":[{"id":"a","name":"A","mimeType":"application/vnd.google-apps.document"},{"id":"b","name":"B","mimeType":"application/vnd.google-apps.folder"}],"nextPageToken":"page2"}`)
		case "page2":
			fmt.Fprint(w, `{"files":[{"id":"c","name":"C","mimeType":"text/plain"}]}`)
		default:
			t.Errorf("unexpected page token %q", token)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	svc, err := driveapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	client := &Client{svc: svc}

	nodes, err := client.ListChildren(context.Background(), "root")
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3 across both pages", len(nodes))
	}
	for i, want := range []string{"a", "b", "c"} {
		if nodes[i].ID != want {
			t.Errorf("nodes[%d].ID = %q, want %q", i, nodes[i].ID, want)
		}
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2", requests)
	}
	if len(tokens) != 2 || tokens[0] != "" || tokens[1] != "page2" {
		t.Errorf("page tokens = %v, want [\"\" \"page2\"]", tokens)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"404", &googleapi.Error{Code: http.StatusNotFound}, true},
		{"403", &googleapi.Error{Code: http.StatusForbidden}, true},
		{"500", &googleapi.Error{Code: http.StatusInternalServerError}, false},
		{"wrapped 404", fmt.Errorf("get: %w", &googleapi.Error{Code: 404}), true},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestFileToNode(t *testing.T) {
	f := &driveapi.File{
		Id:           "abc",
		Name:         "Report",
		MimeType:     "application/vnd.google-apps.document",
		Parents:      []string{"parent1"},
		Md5Checksum:  "deadbeef",
		ModifiedTime: "2024-03-01T10:00:00.000Z",
	}
	n := fileToNode(f)
	if n.ID != "abc" || n.Name != "Report" || n.Checksum != "deadbeef" {
		t.Errorf("unexpected node: %+v", n)
	}
	if n.IsFolder() {
		t.Error("document classified as folder")
	}
	if n.Parent() != "parent1" {
		t.Errorf("Parent() = %q", n.Parent())
	}

	folder := fileToNode(&driveapi.File{Id: "f", MimeType: "application/vnd.google-apps.folder"})
	if !folder.IsFolder() {
		t.Error("folder not classified as folder")
	}
	if folder.Parent() != "" {
		t.Errorf("parentless Parent() = %q", folder.Parent())
	}
}
