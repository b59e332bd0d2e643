package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyperjump/kagami/internal/models"
	"github.com/hyperjump/kagami/pkg/utils"
)

// requestTimeout bounds every call to the store.
const requestTimeout = 30 * time.Second

// SupabaseStore talks to the Supabase REST (PostgREST) and RPC endpoints.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewSupabaseStore creates a store client for the project at baseURL,
// authenticating with the service role key.
func NewSupabaseStore(baseURL, serviceKey string) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    strings.TrimSuffix(baseURL, "/") + "/rest/v1",
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: requestTimeout},
	}
}

// UpsertMetadata implements Store via the upsert_file_metadata RPC. The RPC
// returns the internal record id either as a bare JSON string or as a
// single-element array.
func (s *SupabaseStore) UpsertMetadata(ctx context.Context, payload *models.MetadataPayload) (string, error) {
	body, err := s.do(ctx, http.MethodPost, "/rpc/upsert_file_metadata", nil, payload)
	if err != nil {
		return "", err
	}
	var asList []string
	if err := json.Unmarshal(body, &asList); err == nil && len(asList) > 0 {
		return asList[0], nil
	}
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil && asString != "" {
		return asString, nil
	}
	return "", fmt.Errorf("store: unexpected upsert_file_metadata response: %s", utils.Truncate(string(body), 200))
}

// ReplaceChunks implements Store. The delete runs first and unconditionally,
// so callers must only invoke it once the full replacement set is assembled.
func (s *SupabaseStore) ReplaceChunks(ctx context.Context, recordID string, chunks []models.Chunk) error {
	query := url.Values{"file_id": {"eq." + recordID}}
	if _, err := s.do(ctx, http.MethodDelete, "/chunks", query, nil); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", recordID, err)
	}
	if len(chunks) == 0 {
		return nil
	}
	if _, err := s.do(ctx, http.MethodPost, "/chunks", nil, chunks); err != nil {
		return fmt.Errorf("insert chunks for %s: %w", recordID, err)
	}
	return nil
}

// RecordCursor implements Store via the set_drive_start_page_token RPC.
func (s *SupabaseStore) RecordCursor(ctx context.Context, token string) error {
	_, err := s.do(ctx, http.MethodPost, "/rpc/set_drive_start_page_token",
		nil, map[string]string{"p_token": token})
	return err
}

// StoreFeedback implements Store.
func (s *SupabaseStore) StoreFeedback(ctx context.Context, payload map[string]any) error {
	_, err := s.do(ctx, http.MethodPost, "/feedback", nil, payload)
	return err
}

// FetchPendingApprovals implements Store.
func (s *SupabaseStore) FetchPendingApprovals(ctx context.Context) ([]Approval, error) {
	body, err := s.do(ctx, http.MethodGet, "/answers", url.Values{"approved": {"eq.false"}}, nil)
	if err != nil {
		return nil, err
	}
	var approvals []Approval
	if err := json.Unmarshal(body, &approvals); err != nil {
		return nil, fmt.Errorf("store: decode answers: %w", err)
	}
	return approvals, nil
}

// do issues one request with the PostgREST header set and returns the
// response body. Non-2xx statuses become errors carrying a body snippet.
func (s *SupabaseStore) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("store: encode %s body: %w", path, err)
		}
		reqBody = bytes.NewReader(data)
	}
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("store: create %s request: %w", path, err)
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	if !strings.HasPrefix(path, "/rpc/") {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("store: read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("store: %s %s returned %d: %s",
			method, path, resp.StatusCode, utils.Truncate(string(body), 200))
	}
	return body, nil
}
