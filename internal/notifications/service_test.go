package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"textsummarizer/internal/config"
	"textsummarizer/internal/notifications"
	"textsummarizer/internal/services"
)

type capturedRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, capturedRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), requests...)
	}
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(config.Notifications{})
	if notifications.Enabled(svc) {
		t.Fatal("expected noop service without a topic")
	}
	if err := svc.NotifyRunFailed(context.Background(), "run", "stage", errors.New("boom")); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	srv, requests := newNtfyServer(t, http.StatusOK)
	svc := notifications.NewService(config.Notifications{NtfyTopic: srv.URL, NotifyOnSuccess: true})
	if !notifications.Enabled(svc) {
		t.Fatal("expected ntfy service")
	}
	ctx := context.Background()

	if err := svc.NotifyRunCompleted(ctx, "0123456789abcdef", 3, 1500*time.Millisecond); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	failure := services.WrapWithHint(services.ErrValidation, "data_validation", "check files",
		"Missing required dataset files: test", "re-run ingestion", nil)
	if err := svc.NotifyRunFailed(ctx, "0123456789abcdef", "data_validation", failure); err != nil {
		t.Fatalf("NotifyRunFailed: %v", err)
	}

	got := requests()
	if len(got) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(got))
	}
	if got[0].title != "Summarizer - Run Complete" || got[0].body != "Run 01234567 finished 3 stage(s) in 2s" {
		t.Fatalf("unexpected completion payload %+v", got[0])
	}
	if got[0].priority != "" {
		t.Fatalf("completion should use default priority, got %q", got[0].priority)
	}
	want := "Run 01234567 failed in data_validation: Missing required dataset files: test\nHint: re-run ingestion"
	if got[1].body != want {
		t.Fatalf("unexpected failure body %q", got[1].body)
	}
	if got[1].priority != "high" || !strings.Contains(got[1].tags, "error") {
		t.Fatalf("unexpected failure headers %+v", got[1])
	}
}

func TestNtfyServiceSkipsSuccessWhenDisabled(t *testing.T) {
	srv, requests := newNtfyServer(t, http.StatusOK)
	svc := notifications.NewService(config.Notifications{NtfyTopic: srv.URL})

	if err := svc.NotifyRunCompleted(context.Background(), "run", 1, time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if n := len(requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusForbidden)
	svc := notifications.NewService(config.Notifications{NtfyTopic: srv.URL})

	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}
