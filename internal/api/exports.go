package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-pose/internal/export"
)

// listExportsHandler lists the documents saved through POST /convert?save=.
func listExportsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := os.ReadDir(cfg.ExportsDir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			cfg.Logger.Error("failed to read exports dir", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to list exports", "INTERNAL_ERROR")
			return
		}

		resp := ExportsResponse{Exports: []ExportResponse{}}
		for _, e := range entries {
			if !e.Type().IsRegular() || !isExportName(e.Name()) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			resp.Exports = append(resp.Exports, ExportResponse{
				Name:       e.Name(),
				SizeBytes:  info.Size(),
				Size:       humanize.Bytes(uint64(info.Size())),
				ModifiedAt: info.ModTime().UTC().Format(time.RFC3339),
			})
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// getExportHandler serves one saved document. Range and conditional
// requests are handled by http.ServeContent.
func getExportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if !isExportName(name) {
			WriteError(w, http.StatusBadRequest, "invalid export name", "BAD_REQUEST")
			return
		}

		f, err := os.Open(filepath.Join(cfg.ExportsDir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				WriteError(w, http.StatusNotFound, "export not found", "NOT_FOUND")
				return
			}
			WriteError(w, http.StatusInternalServerError, "failed to open export", "INTERNAL_ERROR")
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || !info.Mode().IsRegular() {
			WriteError(w, http.StatusNotFound, "export not found", "NOT_FOUND")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

// isExportName accepts visible .json names that SanitizeName leaves intact.
// In-flight temp files start with a dot and are never listed.
func isExportName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return false
	}
	return export.SanitizeName(name, len(name)) == name
}
