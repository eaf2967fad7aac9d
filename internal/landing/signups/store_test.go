package signups

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestInsertSendsServiceCredentialsAndPayload(t *testing.T) {
	var gotMethod, gotPath, gotAPIKey, gotAuth, gotPrefer string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotPrefer = r.Header.Get("Prefer")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := New(srv.URL+"/", "service-key", "solarly_signups")
	createdAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	err := store.Insert(context.Background(), Signup{
		Email:     "foo@bar.com",
		Source:    "hero_form_pro",
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/rest/v1/solarly_signups" {
		t.Errorf("path = %q, want /rest/v1/solarly_signups", gotPath)
	}
	if gotAPIKey != "service-key" {
		t.Errorf("apikey header = %q, want %q", gotAPIKey, "service-key")
	}
	if gotAuth != "Bearer service-key" {
		t.Errorf("authorization header = %q, want %q", gotAuth, "Bearer service-key")
	}
	if gotPrefer != "return=minimal" {
		t.Errorf("prefer header = %q, want %q", gotPrefer, "return=minimal")
	}

	var row map[string]any
	if err := json.Unmarshal(gotBody, &row); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if row["email"] != "foo@bar.com" {
		t.Errorf("email = %v, want foo@bar.com", row["email"])
	}
	if row["source"] != "hero_form_pro" {
		t.Errorf("source = %v, want hero_form_pro", row["source"])
	}
	if row["created_at"] != createdAt.Format(time.RFC3339) {
		t.Errorf("created_at = %v, want %v", row["created_at"], createdAt.Format(time.RFC3339))
	}
}

func TestInsertReturnsErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"duplicate key"}`, http.StatusConflict)
	}))
	defer srv.Close()

	store := New(srv.URL, "service-key", "solarly_signups")
	err := store.Insert(context.Background(), Signup{Email: "foo@bar.com", Source: "hero_form", CreatedAt: time.Now().UTC()})
	if err == nil {
		t.Fatal("expected error on HTTP 409")
	}
}

func TestInsertFailsWhenUnconfigured(t *testing.T) {
	store := New("", "", "solarly_signups")
	if store.Configured() {
		t.Fatal("store should report unconfigured")
	}
	if err := store.Insert(context.Background(), Signup{Email: "a@b.co"}); err == nil {
		t.Fatal("expected error from unconfigured store")
	}
}

func TestPingIssuesOneRowRead(t *testing.T) {
	var gotQuery, gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := New(srv.URL, "service-key", "solarly_signups")
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if gotQuery != "select=id&limit=1" {
		t.Errorf("query = %q, want select=id&limit=1", gotQuery)
	}
	if gotAPIKey != "service-key" {
		t.Errorf("apikey header = %q, want service-key", gotAPIKey)
	}
}

func TestPingReturnsErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := New(srv.URL, "service-key", "solarly_signups")
	if err := store.Ping(context.Background()); err == nil {
		t.Fatal("expected error on HTTP 503")
	}
}
