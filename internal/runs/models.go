package runs

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded conversion of a .pose input.
type Run struct {
	ID            string    `json:"id"`
	InputPath     string    `json:"input_path"`
	OutputPath    string    `json:"output_path,omitempty"`
	Names         []string  `json:"names"`
	Status        string    `json:"status"`
	FramesTotal   int       `json:"frames_total"`
	FramesWritten int       `json:"frames_written"`
	FramesSkipped int       `json:"frames_skipped"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewID() string {
	return uuid.NewString()
}
