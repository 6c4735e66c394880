package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"agora/app"
	"agora/domain/core"
	"agora/domain/debate"
)

// handleCreateDebate creates a pending debate from a prompt
func (s *Server) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PromptID            string     `json:"prompt_id"`
		Title               string     `json:"title"`
		Description         string     `json:"description"`
		MaxArgumentsPerSide int        `json:"max_arguments_per_side"`
		ArgumentDeadline    *time.Time `json:"argument_deadline"`
		VotingDeadline      *time.Time `json:"voting_deadline"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	d, err := s.debates.CreateDebate(r.Context(), app.CreateDebateRequest{
		PromptID:            core.ID(req.PromptID),
		Title:               req.Title,
		Description:         req.Description,
		MaxArgumentsPerSide: req.MaxArgumentsPerSide,
		ArgumentDeadline:    req.ArgumentDeadline,
		VotingDeadline:      req.VotingDeadline,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	d, err := s.debates.GetDebate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleListDebates(w http.ResponseWriter, r *http.Request) {
	status := debate.DebateStatus(r.URL.Query().Get("status"))
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, core.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	list, err := s.debates.ListDebates(r.Context(), status, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// argumentView is an argument plus its rendered HTML
type argumentView struct {
	*debate.Argument
	HTML string `json:"html"`
}

func (s *Server) handleListArguments(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	args, err := s.debates.ListArguments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]argumentView, len(args))
	for i, a := range args {
		views[i] = argumentView{Argument: a, HTML: renderMarkdown(a.Content)}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	stages, err := s.debates.ListStages(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stages)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	result, err := s.submissions.Tally(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAddStage(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		StageOrder  int    `json:"stage_order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	st, err := s.debates.AddStage(r.Context(), id, req.Name, req.Description, req.StageOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := core.ParseStageID(chi.URLParam(r, "stageID"))
	if err != nil {
		writeError(w, core.NewValidationError("stage_id", "cannot be empty"))
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		StageOrder  int    `json:"stage_order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	st, err := s.debates.UpdateStage(r.Context(), stageID, req.Name, req.Description, req.StageOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := core.ParseStageID(chi.URLParam(r, "stageID"))
	if err != nil {
		writeError(w, core.NewValidationError("stage_id", "cannot be empty"))
		return
	}
	if err := s.debates.DeleteStage(r.Context(), stageID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateStage(w http.ResponseWriter, r *http.Request) {
	debateID, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	stageID, err := core.ParseStageID(chi.URLParam(r, "stageID"))
	if err != nil {
		writeError(w, core.NewValidationError("stage_id", "cannot be empty"))
		return
	}
	if err := s.debates.ActivateStage(r.Context(), debateID, stageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(debate.StageActive)})
}

func (s *Server) handleCompleteStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := core.ParseStageID(chi.URLParam(r, "stageID"))
	if err != nil {
		writeError(w, core.NewValidationError("stage_id", "cannot be empty"))
		return
	}
	if err := s.debates.CompleteStage(r.Context(), stageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(debate.StageCompleted)})
}

func (s *Server) handleOpenVoting(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	d, err := s.debates.OpenVoting(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCompleteDebate(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDebateID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, core.NewValidationError("id", "cannot be empty"))
		return
	}
	var req struct {
		WinnerSide string `json:"winner_side"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var override *debate.Side
	if req.WinnerSide != "" {
		side, err := debate.ParseSide(req.WinnerSide)
		if err != nil {
			writeError(w, err)
			return
		}
		override = &side
	}
	d, err := s.debates.CompleteDebate(r.Context(), id, override)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleEditArgument(w http.ResponseWriter, r *http.Request) {
	argID := core.ArgumentID(chi.URLParam(r, "argumentID"))
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.debates.EditArgument(r.Context(), argID, req.Content); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteArgument(w http.ResponseWriter, r *http.Request) {
	argID := core.ArgumentID(chi.URLParam(r, "argumentID"))
	if err := s.debates.DeleteArgument(r.Context(), argID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
