package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResendSender_SendsBearerAuthAndPayload(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewResendSender("re_test_key")
	sender.endpoint = srv.URL

	err := sender.Send(context.Background(), Message{
		From:    "Solarly <no-reply@solarly.ai>",
		To:      "lead@example.com",
		Subject: "Welcome to Solarly",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAuth != "Bearer re_test_key" {
		t.Errorf("authorization = %q, want Bearer re_test_key", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("content-type = %q, want application/json", gotContentType)
	}

	var req resendRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if req.From != "Solarly <no-reply@solarly.ai>" {
		t.Errorf("from = %q", req.From)
	}
	if len(req.To) != 1 || req.To[0] != "lead@example.com" {
		t.Errorf("to = %v, want [lead@example.com]", req.To)
	}
	if req.Subject != "Welcome to Solarly" {
		t.Errorf("subject = %q", req.Subject)
	}
}

func TestResendSender_ReturnsErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	sender := NewResendSender("re_test_key")
	sender.endpoint = srv.URL

	err := sender.Send(context.Background(), Message{From: "x", To: "y", Subject: "z"})
	if err == nil {
		t.Fatal("expected error on HTTP 422")
	}
}

func TestLogSender_Send(t *testing.T) {
	var called bool
	var gotTo, gotSubject string

	sender := NewLogSender(func(to, subject, body string) {
		called = true
		gotTo = to
		gotSubject = subject
		_ = body
	})

	err := sender.Send(context.Background(), Message{
		To:      "test@example.com",
		Subject: "Test Subject",
		Text:    "Hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("log function was not called")
	}
	if gotTo != "test@example.com" {
		t.Errorf("expected to=test@example.com, got %s", gotTo)
	}
	if gotSubject != "Test Subject" {
		t.Errorf("expected subject=Test Subject, got %s", gotSubject)
	}
}
