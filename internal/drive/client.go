package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hyperjump/kagami/internal/models"
)

// nodeFields is the field mask requested for every node read.
const nodeFields = "id, name, mimeType, parents, md5Checksum, modifiedTime"

// listPageSize is the maximum page size the Drive API allows for file listings.
const listPageSize = 1000

// maxContentBytes bounds export and download sizes so a single oversized
// document cannot exhaust memory.
const maxContentBytes = 20 * 1024 * 1024

// Client is the Drive v3 implementation of Provider, authenticated with a
// service account.
type Client struct {
	svc *driveapi.Service
}

// NewClient creates a Drive client from service account JSON credentials,
// requesting read-only scope.
func NewClient(ctx context.Context, serviceAccountJSON []byte) (*Client, error) {
	jwt, err := google.JWTConfigFromJSON(serviceAccountJSON, driveapi.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}
	svc, err := driveapi.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// GetNode implements Provider.
func (c *Client) GetNode(ctx context.Context, id string) (*models.Node, error) {
	f, err := c.svc.Files.Get(id).
		Fields(googleapi.Field(nodeFields)).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("get node %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	return fileToNode(f), nil
}

// ListChildren implements Provider. Trashed files are excluded and pagination
// is followed until the provider stops returning a next-page token.
func (c *Client) ListChildren(ctx context.Context, parentID string) ([]*models.Node, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", parentID)
	var nodes []*models.Node
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			PageSize(listPageSize).
			Fields(googleapi.Field("nextPageToken, files(" + nodeFields + ")")).
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", parentID, err)
		}
		for _, f := range resp.Files {
			nodes = append(nodes, fileToNode(f))
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return nodes, nil
}

// ExportText implements Provider.
func (c *Client) ExportText(ctx context.Context, id, mimeType string) (string, error) {
	resp, err := c.svc.Files.Export(id, mimeType).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("export %s as %s: %w", id, mimeType, err)
	}
	data, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("read export of %s: %w", id, err)
	}
	return string(data), nil
}

// DownloadRaw implements Provider.
func (c *Client) DownloadRaw(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.svc.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	data, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read download of %s: %w", id, err)
	}
	return data, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
}

func fileToNode(f *driveapi.File) *models.Node {
	return &models.Node{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Parents:      f.Parents,
		Checksum:     f.Md5Checksum,
		ModifiedTime: f.ModifiedTime,
	}
}

// isNotFound reports whether the Drive API error means the node is gone or
// out of reach for this credential.
func isNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusForbidden
	}
	return false
}
