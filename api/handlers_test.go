package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/seeyarh/radar/scanner"
)

// memStore is an in-memory TaskStore fake so handler tests don't need a
// live Redis.
type memStore struct {
	mu    sync.Mutex
	tasks map[string]*ScanTask
	queue []string
}

func newMemStore() *memStore {
	return &memStore{tasks: make(map[string]*ScanTask)}
}

func (s *memStore) CreateTask(task *ScanTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *memStore) GetTask(id string) (*ScanTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *memStore) UpdateTask(task *ScanTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *memStore) PushToQueue(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, taskID)
	return nil
}

func (s *memStore) PopFromQueue() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return "", ErrTaskNotFound
	}
	id := s.queue[0]
	s.queue = s.queue[1:]
	return id, nil
}

func newTestRouter(store TaskStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewServer(store).RegisterRoutes(router)
	return router
}

func TestCreateScanHandlerAccepted(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	body, _ := json.Marshal(CreateScanRequest{
		Targets: []scanner.Target{{IP: "192.0.2.1", Port: 80}},
	})
	req := httptest.NewRequest(http.MethodPost, "/scans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "pending" {
		t.Errorf("status = %q, want pending", resp["status"])
	}
	if len(store.queue) != 1 {
		t.Errorf("queue length = %d, want 1", len(store.queue))
	}
}

func TestCreateScanHandlerRejectsZeroPort(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	body, _ := json.Marshal(CreateScanRequest{Targets: []scanner.Target{{IP: "192.0.2.1", Port: 0}}})
	req := httptest.NewRequest(http.MethodPost, "/scans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetScanHandlerNotFound(t *testing.T) {
	store := newMemStore()
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/scans/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetScanHandlerReturnsTask(t *testing.T) {
	store := newMemStore()
	task := &ScanTask{ID: "abc", Status: "completed"}
	store.CreateTask(task)
	router := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/scans/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got ScanTask
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != "completed" {
		t.Errorf("Status = %q, want completed", got.Status)
	}
}
