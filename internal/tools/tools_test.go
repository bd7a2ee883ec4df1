package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"sprintline/internal/api"
	"sprintline/internal/authctx"
)

const testSession = "test-session-blob"

// fakeBackend is an in-memory stand-in for the project-management API.
// It records every call so tests can assert which requests were (or
// were not) issued.
type fakeBackend struct {
	mu      sync.Mutex
	srv     *httptest.Server
	calls   []string
	sprints map[string]api.Sprint
	items   map[string]api.BacklogItem
	tasks   map[string]api.Task
	matches []api.SearchMatch
	failOn  map[string]int // "METHOD /path" -> status to return
	nextID  int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		sprints: map[string]api.Sprint{},
		items:   map[string]api.BacklogItem{},
		tasks:   map[string]api.Task{},
		failOn:  map[string]int{},
	}
	b.srv = httptest.NewServer(b.handler())
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) client() *api.Client {
	return api.New(b.srv.URL)
}

func (b *fakeBackend) id(prefix string) string {
	b.nextID++
	return fmt.Sprintf("%s-%d", prefix, b.nextID)
}

// callCount returns how many recorded calls start with prefix, e.g.
// "PATCH" or "POST /api/v1/projects".
func (b *fakeBackend) callCount(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (b *fakeBackend) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// mutatingCalls counts POST/PATCH/PUT/DELETE requests.
func (b *fakeBackend) mutatingCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if !strings.HasPrefix(c, "GET ") {
			n++
		}
	}
	return n
}

func (b *fakeBackend) fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOn[method+" "+path] = status
}

func (b *fakeBackend) addSprint(s api.Sprint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sprints[s.ID] = s
}

func (b *fakeBackend) addItem(i api.BacklogItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[i.ID] = i
}

func (b *fakeBackend) addTask(task api.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks[task.ID] = task
}

func (b *fakeBackend) getItem(id string) (api.BacklogItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.items[id]
	return i, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/projects/{p}/sprints", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		status := r.URL.Query().Get("status")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		out := []api.Sprint{}
		for _, s := range b.sprints {
			if s.ProjectID != r.PathValue("p") {
				continue
			}
			if status != "" && s.Status != status {
				continue
			}
			out = append(out, s)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("POST /api/v1/projects/{p}/sprints", func(w http.ResponseWriter, r *http.Request) {
		var params api.CreateSprintParams
		_ = json.NewDecoder(r.Body).Decode(&params)
		b.mu.Lock()
		defer b.mu.Unlock()
		s := api.Sprint{
			ID:        b.id("spr"),
			ProjectID: r.PathValue("p"),
			Name:      params.Name,
			Goal:      params.Goal,
			Status:    api.SprintPlanning,
			StartDate: params.StartDate,
			EndDate:   params.EndDate,
			Capacity:  params.Capacity,
		}
		b.sprints[s.ID] = s
		writeJSON(w, http.StatusCreated, s)
	})

	mux.HandleFunc("GET /api/v1/sprints/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.sprints[r.PathValue("id")]
		if !ok {
			writeDetail(w, http.StatusNotFound, "sprint not found")
			return
		}
		writeJSON(w, http.StatusOK, s)
	})

	mux.HandleFunc("PATCH /api/v1/sprints/{id}", func(w http.ResponseWriter, r *http.Request) {
		var params api.UpdateSprintParams
		_ = json.NewDecoder(r.Body).Decode(&params)
		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.sprints[r.PathValue("id")]
		if !ok {
			writeDetail(w, http.StatusNotFound, "sprint not found")
			return
		}
		if params.Name != nil {
			s.Name = *params.Name
		}
		if params.Goal != nil {
			s.Goal = *params.Goal
		}
		if params.Status != nil {
			s.Status = *params.Status
		}
		if params.StartDate != nil {
			s.StartDate = *params.StartDate
		}
		if params.EndDate != nil {
			s.EndDate = *params.EndDate
		}
		if params.Capacity != nil {
			s.Capacity = params.Capacity
		}
		b.sprints[s.ID] = s
		writeJSON(w, http.StatusOK, s)
	})

	mux.HandleFunc("DELETE /api/v1/sprints/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := r.PathValue("id")
		if _, ok := b.sprints[id]; !ok {
			writeDetail(w, http.StatusNotFound, "sprint not found")
			return
		}
		delete(b.sprints, id)
		for itemID, item := range b.items {
			if item.SprintID != nil && *item.SprintID == id {
				item.SprintID = nil
				b.items[itemID] = item
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("PUT /api/v1/sprints/{id}/order", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.sprints[r.PathValue("id")]; !ok {
			writeDetail(w, http.StatusNotFound, "sprint not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/v1/projects/{p}/backlog-items", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		q := r.URL.Query()
		out := []api.BacklogItem{}
		for _, item := range b.items {
			if item.ProjectID != r.PathValue("p") {
				continue
			}
			if sid := q.Get("sprint_id"); sid != "" && (item.SprintID == nil || *item.SprintID != sid) {
				continue
			}
			if q.Get("backlog_only") == "true" && item.SprintID != nil {
				continue
			}
			if st := q.Get("status"); st != "" && item.Status != st {
				continue
			}
			out = append(out, item)
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("POST /api/v1/projects/{p}/backlog-items", func(w http.ResponseWriter, r *http.Request) {
		var params api.CreateItemParams
		_ = json.NewDecoder(r.Body).Decode(&params)
		b.mu.Lock()
		defer b.mu.Unlock()
		item := api.BacklogItem{
			ID:          b.id("item"),
			ProjectID:   r.PathValue("p"),
			Title:       params.Title,
			Description: params.Description,
			ItemType:    params.ItemType,
			Priority:    params.Priority,
			Status:      "new",
			StoryPoints: params.StoryPoints,
		}
		b.items[item.ID] = item
		writeJSON(w, http.StatusCreated, item)
	})

	mux.HandleFunc("GET /api/v1/backlog-items/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		item, ok := b.items[r.PathValue("id")]
		if !ok {
			writeDetail(w, http.StatusNotFound, "backlog item not found")
			return
		}
		writeJSON(w, http.StatusOK, item)
	})

	mux.HandleFunc("PATCH /api/v1/backlog-items/{id}", func(w http.ResponseWriter, r *http.Request) {
		var params api.UpdateItemParams
		_ = json.NewDecoder(r.Body).Decode(&params)
		b.mu.Lock()
		defer b.mu.Unlock()
		item, ok := b.items[r.PathValue("id")]
		if !ok {
			writeDetail(w, http.StatusNotFound, "backlog item not found")
			return
		}
		if params.Title != nil {
			item.Title = *params.Title
		}
		if params.Description != nil {
			item.Description = *params.Description
		}
		if params.ItemType != nil {
			item.ItemType = *params.ItemType
		}
		if params.Priority != nil {
			item.Priority = *params.Priority
		}
		if params.Status != nil {
			item.Status = *params.Status
		}
		if params.StoryPoints != nil {
			item.StoryPoints = params.StoryPoints
		}
		if params.SprintID != nil {
			if *params.SprintID == "" {
				item.SprintID = nil
			} else {
				item.SprintID = params.SprintID
			}
		}
		b.items[item.ID] = item
		writeJSON(w, http.StatusOK, item)
	})

	mux.HandleFunc("DELETE /api/v1/backlog-items/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := r.PathValue("id")
		if _, ok := b.items[id]; !ok {
			writeDetail(w, http.StatusNotFound, "backlog item not found")
			return
		}
		delete(b.items, id)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/v1/backlog-items/{id}/criteria", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Criteria []string `json:"criteria"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		defer b.mu.Unlock()
		itemID := r.PathValue("id")
		if _, ok := b.items[itemID]; !ok {
			writeDetail(w, http.StatusNotFound, "backlog item not found")
			return
		}
		created := make([]api.AcceptanceCriterion, 0, len(body.Criteria))
		for _, text := range body.Criteria {
			created = append(created, api.AcceptanceCriterion{
				ID:     b.id("ac"),
				ItemID: itemID,
				Text:   text,
			})
		}
		writeJSON(w, http.StatusCreated, created)
	})

	mux.HandleFunc("GET /api/v1/sprints/{s}/backlog-items/{i}/tasks", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		out := []api.Task{}
		for _, task := range b.tasks {
			if task.SprintID == r.PathValue("s") && task.ItemID == r.PathValue("i") {
				out = append(out, task)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("POST /api/v1/sprints/{s}/backlog-items/{i}/tasks", func(w http.ResponseWriter, r *http.Request) {
		var params api.CreateTaskParams
		_ = json.NewDecoder(r.Body).Decode(&params)
		b.mu.Lock()
		defer b.mu.Unlock()
		task := api.Task{
			ID:          b.id("task"),
			SprintID:    r.PathValue("s"),
			ItemID:      r.PathValue("i"),
			Title:       params.Title,
			Description: params.Description,
			Status:      api.TaskTodo,
			Priority:    params.Priority,
		}
		b.tasks[task.ID] = task
		writeJSON(w, http.StatusCreated, task)
	})

	mux.HandleFunc("GET /api/v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		task, ok := b.tasks[r.PathValue("id")]
		if !ok {
			writeDetail(w, http.StatusNotFound, "task not found")
			return
		}
		writeJSON(w, http.StatusOK, task)
	})

	mux.HandleFunc("PATCH /api/v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		var params api.UpdateTaskParams
		_ = json.NewDecoder(r.Body).Decode(&params)
		b.mu.Lock()
		defer b.mu.Unlock()
		task, ok := b.tasks[r.PathValue("id")]
		if !ok {
			writeDetail(w, http.StatusNotFound, "task not found")
			return
		}
		if params.Title != nil {
			task.Title = *params.Title
		}
		if params.Description != nil {
			task.Description = *params.Description
		}
		if params.Status != nil {
			task.Status = *params.Status
		}
		if params.Priority != nil {
			task.Priority = *params.Priority
		}
		b.tasks[task.ID] = task
		writeJSON(w, http.StatusOK, task)
	})

	mux.HandleFunc("DELETE /api/v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id := r.PathValue("id")
		if _, ok := b.tasks[id]; !ok {
			writeDetail(w, http.StatusNotFound, "task not found")
			return
		}
		delete(b.tasks, id)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"matches": b.matches})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		forced, hasForced := b.failOn[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+testSession {
			writeDetail(w, http.StatusUnauthorized, "invalid session")
			return
		}
		if hasForced {
			writeDetail(w, forced, "forced failure")
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// authedCtx returns a context carrying the test session credential, the
// way the stdio transport attaches it per invocation.
func authedCtx() context.Context {
	return authctx.WithCredential(context.Background(), testSession)
}

func callReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
