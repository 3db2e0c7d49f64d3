package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-pose/internal/config"
	"github.com/heimdex/heimdex-pose/internal/convert"
	"github.com/heimdex/heimdex-pose/internal/export"
	"github.com/heimdex/heimdex-pose/internal/keypoints"
	"github.com/heimdex/heimdex-pose/internal/poseformat"
)

const listRunsLimit = 50

func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.Registry == nil {
		cfg.Registry = keypoints.Default
	}
	if len(cfg.DefaultNames) == 0 {
		cfg.DefaultNames = keypoints.DefaultNames
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(LoopbackGuard())
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))
	r.Get("/keypoints", keypointsHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Post("/convert", convertHandler(cfg))
		r.Get("/runs", listRunsHandler(cfg))
		r.Get("/runs/{id}", getRunHandler(cfg))
		r.Get("/exports", listExportsHandler(cfg))
		r.Get("/exports/{name}", getExportHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func keypointsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, KeypointsResponse{
			Body:      cfg.Registry.NamesFor(keypoints.SourceBody),
			Face:      cfg.Registry.NamesFor(keypoints.SourceFace),
			LeftHand:  cfg.Registry.NamesFor(keypoints.SourceLeftHand),
			RightHand: cfg.Registry.NamesFor(keypoints.SourceRightHand),
			Defaults:  cfg.DefaultNames,
		})
	}
}

// convertHandler converts a .pose body. Query parameters: names (comma
// list), limit (max records), save (file stem under the exports dir).
func convertHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		names := config.SplitNames(q.Get("names"))
		if len(names) == 0 {
			names = cfg.DefaultNames
		}

		opts := []convert.Option{convert.WithRegistry(cfg.Registry)}
		if v := q.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer", "BAD_REQUEST")
				return
			}
			opts = append(opts, convert.WithLimit(limit))
		}

		var outputPath string
		if save := q.Get("save"); save != "" {
			// Dot-prefixed names are hidden from GET /exports.
			stem := strings.TrimLeft(export.SanitizeName(save, 120), ".")
			if stem == "" {
				WriteError(w, http.StatusBadRequest, "invalid save name", "BAD_REQUEST")
				return
			}
			outputPath = filepath.Join(cfg.ExportsDir, stem+".json")
			if err := export.ValidateOutputPath(outputPath); err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
		}

		body := r.Body
		if cfg.MaxUploadBytes > 0 {
			body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		}

		run, frames, err := cfg.Service.ConvertReader(r.Context(), "upload", body, names, opts...)
		if err != nil {
			writeConvertError(w, err)
			return
		}

		if outputPath != "" {
			if _, err := export.WriteFile(outputPath, frames); err != nil {
				cfg.Logger.Error("failed to save export", "error", err, "run_id", run.ID)
				WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
				return
			}
		}

		WriteJSON(w, http.StatusOK, ConvertResponse{
			RunID:         run.ID,
			FramesTotal:   run.FramesTotal,
			FramesSkipped: run.FramesSkipped,
			OutputPath:    outputPath,
			Frames:        frames,
		})
	}
}

func writeConvertError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "request body too large", "PAYLOAD_TOO_LARGE")
	case errors.Is(err, keypoints.ErrUnknownKeypoint):
		WriteError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_KEYPOINT")
	case errors.Is(err, keypoints.ErrMalformedBody),
		errors.Is(err, keypoints.ErrMalformedFace),
		errors.Is(err, keypoints.ErrMalformedHand),
		errors.Is(err, poseformat.ErrSyntax),
		errors.Is(err, poseformat.ErrRecord):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "MALFORMED_FRAME")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func listRunsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := cfg.Service.ListRuns(r.Context(), listRunsLimit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list runs", "INTERNAL_ERROR")
			return
		}

		resp := RunsResponse{Runs: make([]RunResponse, len(list))}
		for i, run := range list {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getRunHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "run id required", "BAD_REQUEST")
			return
		}

		run, err := cfg.Service.GetRun(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if run == nil {
			WriteError(w, http.StatusNotFound, "run not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, RunToResponse(run))
	}
}
