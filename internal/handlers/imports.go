// Package handlers holds HTTP handlers that sit outside the per-session
// catalog flow.
package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"laptop-request-catalog/internal/auth"
	"laptop-request-catalog/pkg/importer"

	"github.com/rs/zerolog/hlog"
)

// ImportsHandler handles Excel catalog imports
type ImportsHandler struct {
	DB       importer.DB
	MaxBytes int64
	Mapping  string
	Table    string
}

// NewImportsHandler creates a new imports handler
func NewImportsHandler(db importer.DB, table, mapping string) *ImportsHandler {
	return &ImportsHandler{
		DB:       db,
		MaxBytes: 20 << 20, // 20 MB
		Mapping:  mapping,
		Table:    table,
	}
}

// UploadExcel handles .xlsx uploads that seed the laptop catalog
func (h *ImportsHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		http.Error(w, "catalog import requires the postgres backend", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		http.Error(w, "content-type must be multipart/form-data", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	dryRun := r.FormValue("dry_run") == "true"
	maxErrors := 50
	if v := r.FormValue("max_errors"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxErrors = n
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !isXLSX(header) {
		http.Error(w, "only .xlsx files are accepted", http.StatusBadRequest)
		return
	}

	logger := hlog.FromRequest(r)
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		logger.Info().Str("role", claims.Role).Str("file", header.Filename).Bool("dry_run", dryRun).Msg("Catalog import started")
	}

	sum, impErr := importer.ImportExcel(r.Context(), h.DB, file, importer.ImportOptions{
		Table:       h.Table,
		MappingPath: h.Mapping,
		DryRun:      dryRun,
		MaxErrors:   maxErrors,
	})
	if impErr != nil {
		logger.Error().Err(impErr).Msg("Catalog import failed")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "IMPORT_FAILED",
			"details": impErr.Error(),
			"data":    sum, // might include partial
		})
		return
	}

	logger.Info().
		Int("inserted", sum.Inserted).
		Int("updated", sum.Updated).
		Int("errors", sum.Errors).
		Msg("Catalog import finished")
	writeJSON(w, http.StatusOK, map[string]any{
		"data": sum,
		"meta": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// isXLSX checks if the uploaded file is an Excel .xlsx file
func isXLSX(h *multipart.FileHeader) bool {
	return strings.HasSuffix(strings.ToLower(h.Filename), ".xlsx")
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
