package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type singleRequest struct {
	CaseID      string `json:"case_id"`
	AgentID     string `json:"agent_id"`
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

type bulkRequest struct {
	CaseIDs     []string `json:"case_ids"`
	AgentID     string   `json:"agent_id"`
	RequestedBy string   `json:"requested_by"`
	Reason      string   `json:"reason,omitempty"`
	Priority    string   `json:"priority,omitempty"`
}

type reassignRequest struct {
	CaseID      string `json:"case_id"`
	FromAgentID string `json:"from_agent_id"`
	ToAgentID   string `json:"to_agent_id"`
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason"`
}

type batchStatusResponse struct {
	BatchID     string   `json:"batch_id"`
	JobID       string   `json:"job_id"`
	RequestedBy string   `json:"requested_by"`
	AgentID     string   `json:"agent_id"`
	Status      string   `json:"status"`
	TotalCases  int      `json:"total_cases"`
	Processed   int      `json:"processed"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Percentage  int      `json:"percentage"`
	Errors      []string `json:"errors,omitempty"`
	StartedAt   string   `json:"started_at"`
	CompletedAt string   `json:"completed_at,omitempty"`
}

func (s *Server) handleSubmitSingle(w http.ResponseWriter, r *http.Request) {
	var req singleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	jobID, err := s.submitUC.SubmitSingle(r.Context(), usecase.SingleRequest{
		CaseID:      req.CaseID,
		AgentID:     req.AgentID,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
		Priority:    req.Priority,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) handleSubmitBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	batchID, jobID, err := s.submitUC.SubmitBulk(r.Context(), usecase.BulkRequest{
		CaseIDs:     req.CaseIDs,
		AgentID:     req.AgentID,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
		Priority:    req.Priority,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"batch_id": batchID, "job_id": jobID})
}

func (s *Server) handleSubmitReassign(w http.ResponseWriter, r *http.Request) {
	var req reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	jobID, err := s.submitUC.SubmitReassign(r.Context(), usecase.ReassignRequest{
		CaseID:      req.CaseID,
		FromAgentID: req.FromAgentID,
		ToAgentID:   req.ToAgentID,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	rec, err := s.statusUC.GetBatchStatus(r.Context(), batchID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	resp := batchStatusResponse{
		BatchID:     rec.BatchID,
		JobID:       rec.JobID,
		RequestedBy: rec.RequestedBy,
		AgentID:     rec.AgentID,
		Status:      string(rec.Status),
		TotalCases:  rec.TotalCases,
		Processed:   rec.Processed,
		Succeeded:   rec.Succeeded,
		Failed:      rec.Failed,
		Percentage:  rec.Percentage(),
		Errors:      rec.Errors,
		StartedAt:   rec.StartedAt.Format(timeLayout),
	}
	if rec.CompletedAt != nil {
		resp.CompletedAt = rec.CompletedAt.Format(timeLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	var body struct {
		CancelledBy string `json:"cancelled_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ok, err := s.statusUC.CancelBatch(r.Context(), batchID, body.CancelledBy)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": ok})
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrCaseNotFound), errors.Is(err, domain.ErrAgentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAgentInactive), errors.Is(err, domain.ErrAssignmentMismatch):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrBatchTooLarge), errors.Is(err, domain.ErrReasonRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
