package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"sprintline/internal/authctx"
)

// authedCtx returns a context carrying a test credential.
func authedCtx() context.Context {
	return authctx.WithCredential(context.Background(), "test-session")
}

func TestClient_AttachesCredentialHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]Sprint{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListSprints(authedCtx(), "p1", "", 0)
	if err != nil {
		t.Fatalf("ListSprints failed: %v", err)
	}
	if gotAuth != "Bearer test-session" {
		t.Errorf("Authorization = %q, want Bearer test-session", gotAuth)
	}
}

func TestClient_MissingCredential_NoRequestIssued(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListSprints(context.Background(), "p1", "", 0)
	if !errors.Is(err, authctx.ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("backend received %d calls, want 0", n)
	}
}

func TestClient_ErrorDetailExtracted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "sprint name already in use"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreateSprint(authedCtx(), "p1", CreateSprintParams{Name: "Sprint 1"})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("status = %d, want 409", apiErr.Status)
	}
	if apiErr.Error() != "sprint name already in use" {
		t.Errorf("message = %q, want backend detail", apiErr.Error())
	}
}

func TestClient_ErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetSprint(authedCtx(), "s1")

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.Error() != "HTTP 502 Bad Gateway" {
		t.Errorf("message = %q, want status fallback", apiErr.Error())
	}
}

func TestClient_TransportErrorWrapped(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL)
	_, err := c.GetSprint(authedCtx(), "s1")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure must not masquerade as an HTTP error: %v", err)
	}
}

func TestActiveSprint_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "active" {
			t.Errorf("status query = %q, want active", got)
		}
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("limit query = %q, want 1", got)
		}
		_ = json.NewEncoder(w).Encode([]Sprint{{ID: "s7", Name: "Sprint 7", Status: SprintActive}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	sprint, err := c.ActiveSprint(authedCtx(), "p1")
	if err != nil {
		t.Fatalf("ActiveSprint failed: %v", err)
	}
	if sprint.ID != "s7" {
		t.Errorf("sprint.ID = %q, want s7", sprint.ID)
	}
}

func TestActiveSprint_NoneIsExplicitSignal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Sprint{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ActiveSprint(authedCtx(), "p1")
	if !errors.Is(err, ErrNoActiveSprint) {
		t.Fatalf("err = %v, want ErrNoActiveSprint", err)
	}
}

func TestClient_RetriesIdempotentReads(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Kill the connection on the first attempt.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("recorder not hijackable")
			}
			conn, _, _ := hj.Hijack()
			_ = conn.Close()
			return
		}
		_ = json.NewEncoder(w).Encode(Sprint{ID: "s1", Name: "Sprint 1"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(2))
	sprint, err := c.GetSprint(authedCtx(), "s1")
	if err != nil {
		t.Fatalf("GetSprint should succeed after retry: %v", err)
	}
	if sprint.ID != "s1" {
		t.Errorf("sprint.ID = %q, want s1", sprint.ID)
	}
	if n := calls.Load(); n < 2 {
		t.Errorf("backend saw %d calls, want at least 2", n)
	}
}

func TestClient_NeverRetriesWrites(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("recorder not hijackable")
		}
		conn, _, _ := hj.Hijack()
		_ = conn.Close()
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(3))
	_, err := c.CreateSprint(authedCtx(), "p1", CreateSprintParams{Name: "Sprint 1"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("mutating call retried: backend saw %d calls, want 1", n)
	}
}

func TestClient_HTTPErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetries(3))
	_, err := c.GetSprint(authedCtx(), "s1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("non-2xx retried: backend saw %d calls, want 1", n)
	}
}

func TestListBacklogItems_BacklogOnlyFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("backlog_only"); got != "true" {
			t.Errorf("backlog_only = %q, want true", got)
		}
		_ = json.NewEncoder(w).Encode([]BacklogItem{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	productBacklog := ""
	_, err := c.ListBacklogItems(authedCtx(), "p1", ListItemsFilter{SprintID: &productBacklog})
	if err != nil {
		t.Fatalf("ListBacklogItems failed: %v", err)
	}
}

func TestSprint_Terminal(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{SprintPlanning, false},
		{SprintActive, false},
		{SprintCompleted, true},
		{SprintCancelled, true},
	}
	for _, tc := range cases {
		s := &Sprint{Status: tc.status}
		if got := s.Terminal(); got != tc.want {
			t.Errorf("Terminal(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}
