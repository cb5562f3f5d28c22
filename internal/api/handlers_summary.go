package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dgallion1/docrank/internal/output"
)

// handleSummary renders the plain-text report for a posted per-document
// analysis.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if err := output.CheckOutput(raw); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var doc output.PerDocumentOutput
	if err := json.Unmarshal(raw, &doc); err != nil {
		jsonError(w, "invalid analysis: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, output.CreateSummaryReport(doc))
}
