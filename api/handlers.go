package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server bundles dependencies for HTTP handlers.
type Server struct {
	store TaskStore
}

// NewServer creates a new API server instance.
func NewServer(store TaskStore) *Server {
	return &Server{store: store}
}

// RegisterRoutes attaches handlers to the provided Gin engine.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.POST("/scans", s.createScanHandler)
	router.GET("/scans/:id", s.getScanHandler)
}

// @Summary      Create a new detection task
// @Description  Submit a batch of targets and let Radar run the probe catalog against them asynchronously. The handler validates input, persists the task, and enqueues it for background workers before returning a task id.
// @Description  **Lifecycle**: POST /scans immediately answers with HTTP 202 Accepted plus the task identifier. Clients must poll GET /scans/{id} to observe status transitions (pending → running → completed/failed). Detection results are attached only after completion.
// @Tags         Scans
// @Accept       json
// @Produce      json
// @Param        scanRequest  body  CreateScanRequest  true  "Targets and transport"
// @Success      202  {object}  gin.H  "Task accepted. Poll GET /scans/{id} to track progress."
// @Failure      400  {object}  gin.H  "Malformed JSON body or failed validation."
// @Failure      500  {object}  gin.H  "Internal error while persisting or queueing the task."
// @Security     ApiKeyAuth
// @Router       /scans [post]
func (s *Server) createScanHandler(c *gin.Context) {
	var req CreateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, target := range req.Targets {
		if err := validatePort(target.Port); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("target %s: %v", target.Address(), err)})
			return
		}
	}

	transport := req.Transport
	if transport == "" {
		transport = "tcp"
	}

	task := &ScanTask{
		ID:        uuid.NewString(),
		Status:    "pending",
		Targets:   req.Targets,
		Transport: transport,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateTask(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist task"})
		return
	}

	if err := s.store.PushToQueue(task.ID); err != nil {
		task.Status = "failed"
		task.Error = "failed to queue task"
		now := time.Now().UTC()
		task.CompletedAt = &now
		_ = s.store.UpdateTask(task)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue task"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":     task.ID,
		"status": task.Status,
	})
}

// @Summary      Get detection task status and results
// @Description  Retrieve a live snapshot of a detection task. Supply the id obtained from POST /scans and poll this endpoint until the lifecycle reaches completed.
// @Tags         Scans
// @Produce      json
// @Param        id   path      string    true  "Task ID"
// @Success      200  {object}  ScanTask  "Current task snapshot, including results once completed."
// @Failure      404  {object}  gin.H     "Task with the provided ID does not exist."
// @Failure      500  {object}  gin.H     "Internal error when loading the task."
// @Security     ApiKeyAuth
// @Router       /scans/{id} [get]
func (s *Server) getScanHandler(c *gin.Context) {
	id := c.Param("id")
	task, err := s.store.GetTask(id)
	if err != nil {
		if err == ErrTaskNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load task"})
		return
	}

	c.JSON(http.StatusOK, task)
}
