package api

import (
	"time"

	"github.com/heimdex/heimdex-pose/internal/export"
	"github.com/heimdex/heimdex-pose/internal/runs"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type KeypointsResponse struct {
	Body      []string `json:"body"`
	Face      []string `json:"face"`
	LeftHand  []string `json:"left_hand"`
	RightHand []string `json:"right_hand"`
	Defaults  []string `json:"defaults"`
}

type ConvertResponse struct {
	RunID         string         `json:"run_id"`
	FramesTotal   int            `json:"frames_total"`
	FramesSkipped int            `json:"frames_skipped"`
	OutputPath    string         `json:"output_path,omitempty"`
	Frames        []export.Frame `json:"frames"`
}

type RunResponse struct {
	ID            string   `json:"id"`
	InputPath     string   `json:"input_path"`
	OutputPath    string   `json:"output_path,omitempty"`
	Names         []string `json:"names"`
	Status        string   `json:"status"`
	FramesTotal   int      `json:"frames_total"`
	FramesWritten int      `json:"frames_written"`
	FramesSkipped int      `json:"frames_skipped"`
	Error         string   `json:"error,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type ExportResponse struct {
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size_bytes"`
	Size       string `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

type ExportsResponse struct {
	Exports []ExportResponse `json:"exports"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RunToResponse(r *runs.Run) RunResponse {
	return RunResponse{
		ID:            r.ID,
		InputPath:     r.InputPath,
		OutputPath:    r.OutputPath,
		Names:         r.Names,
		Status:        r.Status,
		FramesTotal:   r.FramesTotal,
		FramesWritten: r.FramesWritten,
		FramesSkipped: r.FramesSkipped,
		Error:         r.Error,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
}
