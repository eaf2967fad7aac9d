// Package signups persists landing-page leads into the hosted Supabase
// signups table via its PostgREST interface.
package signups

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
)

// Signup is one append-only row in the signups table.
type Signup struct {
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Store writes signups through the Supabase REST endpoint using a
// service-level credential. Leads are append-only; there is no update or
// delete path and duplicate emails may insert duplicate rows.
type Store struct {
	baseURL    string
	serviceKey string
	table      string
	httpClient *http.Client
}

// New creates a signups store client. baseURL may be empty, in which case
// the store reports itself unconfigured and every call fails.
func New(baseURL, serviceKey, table string) *Store {
	return &Store{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		serviceKey: strings.TrimSpace(serviceKey),
		table:      strings.TrimSpace(table),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether the store has both an endpoint and a credential.
func (s *Store) Configured() bool {
	return s.baseURL != "" && s.serviceKey != "" && s.table != ""
}

// Insert appends one signup row. The insert is attempted exactly once;
// a non-2xx response is returned as an error carrying the status code.
func (s *Store) Insert(ctx context.Context, signup Signup) error {
	if !s.Configured() {
		return fmt.Errorf("signups store not configured")
	}

	payload, err := json.Marshal(signup)
	if err != nil {
		return fmt.Errorf("marshal signup: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, url.PathEscape(s.table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create insert request: %w", err)
	}
	s.setAuthHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("signups insert request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("signups insert failed (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Ping issues a lightweight one-row read against the signups table. It
// counts as project activity on the hosted database without writing.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Configured() {
		return fmt.Errorf("signups store not configured")
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=id&limit=1", s.baseURL, url.PathEscape(s.table))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	s.setAuthHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("signups ping request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("signups ping failed (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (s *Store) setAuthHeaders(req *http.Request) {
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
}
