package api

import (
	"fmt"
	"net/http"

	"github.com/OuyangRuyi/pdf-reader/internal/meta"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if _, err := s.meta.Get(docID); err != nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}

	job, err := s.orchestrator.Submit(docID)
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	})
}

func (s *Server) handleListIndexed(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.ListIndexedDocs()
	if err != nil {
		jsonError(w, "failed to list indices: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_ids": ids,
		"count":   len(ids),
	})
}

func (s *Server) handleDeleteIndex(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if !s.engine.HasIndex(docID) {
		jsonError(w, "index not found", http.StatusNotFound)
		return
	}
	if err := s.engine.DeleteIndex(docID); err != nil {
		jsonError(w, "failed to delete index: "+err.Error(), http.StatusInternalServerError)
		return
	}
	// The document itself survives; only its vectors are gone.
	if err := s.meta.SetStatus(docID, meta.StatusNotStarted); err != nil {
		s.log.Warn("status reset failed", "doc_id", docID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
