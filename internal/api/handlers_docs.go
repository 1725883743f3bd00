package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/OuyangRuyi/pdf-reader/internal/blocksource"
	"github.com/OuyangRuyi/pdf-reader/internal/meta"
	"github.com/OuyangRuyi/pdf-reader/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !blocksource.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	docID := strings.ToLower(pipeline.NewID())
	size, err := s.docs.SaveUpload(docID, filename, io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to store file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if size > s.cfg.MaxUploadBytes {
		s.docs.Delete(docID)
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	// Parse once up front so broken files are rejected at upload time
	// and the page count is known.
	blocks, err := s.docs.GetBlocks(r.Context(), docID)
	if err != nil {
		s.docs.Delete(docID)
		jsonError(w, "failed to parse document: "+err.Error(), http.StatusBadRequest)
		return
	}
	numPages := 0
	for _, b := range blocks {
		if b.Page > numPages {
			numPages = b.Page
		}
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	m := meta.DocMeta{
		DocID:           docID,
		Title:           title,
		Filename:        filename,
		NumPages:        numPages,
		SizeBytes:       size,
		CreatedAt:       time.Now().UTC(),
		EmbeddingStatus: meta.StatusNotStarted,
	}
	if err := s.meta.Save(m); err != nil {
		s.docs.Delete(docID)
		jsonError(w, "failed to save metadata: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	metas, err := s.meta.List()
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if metas == nil {
		metas = []meta.DocMeta{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": metas,
		"count":     len(metas),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	m, err := s.meta.Get(docID)
	if err != nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document":  m,
		"has_index": s.engine.HasIndex(docID),
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if _, err := s.meta.Get(docID); err != nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	if err := s.engine.DeleteIndex(docID); err != nil {
		jsonError(w, "failed to delete index: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.docs.Delete(docID); err != nil {
		jsonError(w, "failed to delete file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.meta.Delete(docID); err != nil {
		jsonError(w, "failed to delete metadata: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
