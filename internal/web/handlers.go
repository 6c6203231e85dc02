package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/trcsocial/shopify-csv-uploader/internal/core"
	"github.com/trcsocial/shopify-csv-uploader/internal/logging"
	"github.com/trcsocial/shopify-csv-uploader/internal/web/templates"
)

// handleIndex renders the upload form page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.IndexPage().Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleEnrich accepts the master sheet and Shopify template CSVs and
// responds with the export bundle as a ZIP download. Both files stream
// through the pipeline; nothing is persisted between requests.
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	// Two files per request, so allow twice the per-file budget plus
	// some slack for multipart framing.
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxSize+1<<20)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}

	master, _, err := r.FormFile("master_csv")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, errors.New("no file provided: master_csv"))
		return
	}
	defer master.Close()

	template, _, err := r.FormFile("template_csv")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, errors.New("no file provided: template_csv"))
		return
	}
	defer template.Close()

	result, err := s.service.Export(r.Context(), master, template)
	if err != nil {
		status := http.StatusInternalServerError
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			status = http.StatusBadRequest
		}
		s.respondError(w, r, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", core.BundleFilename))
	w.Header().Set("X-Export-ID", result.ExportID)
	if _, err := w.Write(result.Bundle); err != nil {
		log.Error("write bundle", "error", err)
	}
}

// respondError logs the underlying error and sends its sanitized
// user-facing form as JSON.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logging.FromContext(r.Context()).Error("request failed",
		"status", status,
		"path", r.URL.Path,
		"error", err,
	)
	respondUserError(w, r, status, core.MapError(err))
}

// respondUserError writes a UserMessage as the JSON error body.
func respondUserError(w http.ResponseWriter, r *http.Request, status int, msg core.UserMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("json encode error: %v", err)
	}
}
