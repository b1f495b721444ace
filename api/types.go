package api

import (
	"time"

	"github.com/seeyarh/radar/scanner"
)

// ScanTask represents a batch detection job managed by the API service.
type ScanTask struct {
	ID          string                `json:"id"`
	Status      string                `json:"status"`
	Targets     []scanner.Target      `json:"targets"`
	Transport   string                `json:"transport"`
	Results     []scanner.RadarOutput `json:"results,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// CreateScanRequest is the payload for creating new detection tasks.
type CreateScanRequest struct {
	Targets   []scanner.Target `json:"targets" binding:"required,min=1"`
	Transport string           `json:"transport" binding:"omitempty,oneof=tcp udp" example:"tcp"`
}
