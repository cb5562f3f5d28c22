package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docrank/internal/output"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// maxAnalyzeFiles bounds the request body at this many max-size uploads.
const maxAnalyzeFiles = 10

// handleAnalyze ranks the uploaded documents against persona and job and
// responds with the consolidated output.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxAnalyzeFiles+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	persona := strings.TrimSpace(r.FormValue("persona"))
	job := strings.TrimSpace(r.FormValue("job"))
	if persona == "" || job == "" {
		jsonError(w, "persona and job are required", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	workDir, err := os.MkdirTemp("", "docrank-analyze-")
	if err != nil {
		jsonError(w, "failed to create work dir", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(workDir)
	inDir, outDir := filepath.Join(workDir, "in"), filepath.Join(workDir, "out")
	if err := os.Mkdir(inDir, 0o755); err != nil {
		jsonError(w, "failed to create work dir", http.StatusInternalServerError)
		return
	}

	cfg := pipeline.InputConfig{
		Persona:     pipeline.Persona{Role: persona},
		JobToBeDone: pipeline.JobToBeDone{Task: job},
	}
	seen := make(map[string]bool, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}
		if seen[filename] {
			jsonError(w, "duplicate file: "+filename, http.StatusBadRequest)
			return
		}
		seen[filename] = true

		if fh.Size > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("%s exceeds max size (%d bytes)", filename, s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		if err := saveUpload(fh, filepath.Join(inDir, filename), s.cfg.MaxUploadBytes); err != nil {
			s.log.Error("upload save failed", "filename", filename, "error", err)
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		cfg.Documents = append(cfg.Documents, pipeline.DocumentRef{
			Filename: filename,
			Title:    strings.TrimSuffix(filename, filepath.Ext(filename)),
		})
	}

	summary, err := s.proc.RunFromConfig(cfg, inDir, outDir)
	if summary != nil {
		w.Header().Set("X-Run-ID", summary.RunID)
	}
	switch {
	case errors.Is(err, pipeline.ErrNoDocumentsProcessed):
		jsonError(w, "no documents could be processed", http.StatusUnprocessableEntity)
		return
	case err != nil:
		var cerr *pipeline.ConfigError
		if errors.As(err, &cerr) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error("analyze failed", "error", err)
		jsonError(w, "analysis failed", http.StatusInternalServerError)
		return
	}

	raw, err := output.Marshal(summary.Consolidated)
	if err != nil {
		jsonError(w, "failed to encode output", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run := s.proc.Runs().Get(runID)
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}

func saveUpload(fh *multipart.FileHeader, dst string, limit int64) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, io.LimitReader(src, limit)); err != nil {
		f.Close()
		return fmt.Errorf("copy upload: %w", err)
	}
	return f.Close()
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
