package trackertest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func get(t *testing.T, url, apiKey string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp, body
}

func TestHealthIsOpen(t *testing.T) {
	s := New(t)
	resp, body := get(t, s.URL()+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "healthy") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestRejectsBadAPIKey(t *testing.T) {
	s := New(t)
	resp, body := get(t, s.URL()+"/teams", "wrong-key")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload["detail"] == "" {
		t.Fatalf("expected detail message, got %s", body)
	}
}

func TestCountsRequestsPerRoute(t *testing.T) {
	s := New(t)
	get(t, s.URL()+"/teams", s.APIKey())
	get(t, s.URL()+"/teams", s.APIKey())
	if n := s.RequestCount(http.MethodGet, "/teams"); n != 2 {
		t.Fatalf("expected 2 requests, got %d", n)
	}
	if n := s.RequestCount(http.MethodPost, "/teams"); n != 0 {
		t.Fatalf("expected 0 posts, got %d", n)
	}
}

func TestCurrentUserFixture(t *testing.T) {
	s := New(t)
	resp, body := get(t, s.URL()+"/users/me", s.APIKey())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var user map[string]any
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if user["username"] != "testuser" {
		t.Fatalf("unexpected user: %s", body)
	}
}
