package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/contact-enricher/internal/db"
	"github.com/jonathan/contact-enricher/internal/pipeline"
	"github.com/jonathan/contact-enricher/internal/types"
)

// maxRequestBody caps enrich request bodies; trigger records are small.
const maxRequestBody = 1 << 20

// handleEnrich runs the enrichment flow synchronously and returns the result.
// The request body is the CRM trigger record as delivered by the automation.
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	record, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	result, err := s.pipeline.Run(r.Context(), record, pipeline.RunOptions{})
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleEnrichStream runs the enrichment flow and streams progress events
// over SSE as the steps complete.
func (s *Server) handleEnrichStream(w http.ResponseWriter, r *http.Request) {
	record, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.pipeline.Run(r.Context(), record, pipeline.RunOptions{
		OnProgress: func(event pipeline.ProgressEvent) {
			_ = sse.WriteEvent("progress", event)
		},
	})
	if err != nil {
		sse.WriteError(err.Error())
		return
	}

	sse.WriteComplete(result.RunID.String(), resultStatus(result))
}

func resultStatus(result *pipeline.Result) string {
	switch {
	case result.Skipped:
		return "skipped"
	case result.Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (*types.TriggerRecord, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	record, err := types.DecodeTriggerRecord(body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return record, true
}

// handleListRuns returns recent runs from the audit log.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.pipeline.Database == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "run auditing is not configured")
		return
	}

	filters := db.RunFilters{
		RecordID: r.URL.Query().Get("record_id"),
		Status:   r.URL.Query().Get("status"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filters.Limit = limit
	}

	runs, err := s.pipeline.Database.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns a single audit record by run ID.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.pipeline.Database == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "run auditing is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.pipeline.Database.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}
