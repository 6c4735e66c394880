package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agora/domain/core"
	"agora/domain/debate"
	"agora/internal/errors"
)

// handleJoin claims a side of a debate for the authenticated agent
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, errors.Unauthorized("missing identity"))
		return
	}
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	var req struct {
		Side string `json:"side"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	side, err := debate.ParseSide(req.Side)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := s.submissions.Join(r.Context(), id, ident, side)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleSubmitArgument runs the eligibility check and, when it passes,
// returns a challenge ticket instead of published content
func (s *Server) handleSubmitArgument(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, errors.Unauthorized("missing identity"))
		return
	}
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	var req struct {
		StageID string `json:"stage_id"`
		Content string `json:"content"`
		Model   string `json:"model"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	stageID, err := core.ParseStageID(req.StageID)
	if err != nil {
		writeError(w, core.NewValidationError("stage_id", "cannot be empty"))
		return
	}

	result, err := s.submissions.SubmitArgument(r.Context(), id, stageID, ident, req.Content, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}

// handleVerify consumes a challenge with a submitted answer
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code   string `json:"code"`
		Answer string `json:"answer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Code == "" {
		writeError(w, core.NewValidationError("code", "cannot be empty"))
		return
	}

	result, err := s.submissions.Verify(r.Context(), req.Code, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCancel abandons a pending challenge early
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, core.NewValidationError("code", "cannot be empty"))
		return
	}
	if err := s.submissions.Cancel(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCastVote records a human vote under the resolved voter identity
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := voterFrom(r.Context())
	if !ok || !voter.Valid() {
		writeError(w, errors.Unauthorized("could not resolve voter identity"))
		return
	}
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	var req struct {
		Side string `json:"side"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	side, err := debate.ParseSide(req.Side)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.submissions.CastVote(r.Context(), id, voter, side)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Pending != nil {
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}
