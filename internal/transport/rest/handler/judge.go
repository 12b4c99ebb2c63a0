package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"codeduel/internal/model"
	"codeduel/internal/service"
)

// JudgeHandler runs ad-hoc submissions against caller-supplied cases
type JudgeHandler struct {
	judgeSvc *service.JudgeService
}

// NewJudgeHandler creates a new judge handler. judgeSvc may be nil when no judge is configured.
func NewJudgeHandler(judgeSvc *service.JudgeService) *JudgeHandler {
	return &JudgeHandler{judgeSvc: judgeSvc}
}

// Submit handles POST /v1/judge/submit
// @Summary Judge source code against test cases
// @Accept json
// @Produce json
// @Param request body model.SubmissionRequest true "Submission"
// @Success 200 {object} model.SubmissionResult
// @Failure 400 {object} map[string]string
// @Router /judge/submit [post]
func (h *JudgeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.judgeSvc == nil {
		writeError(w, http.StatusServiceUnavailable, "judge is not configured")
		return
	}

	var req model.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SourceCode) == "" || len(req.TestCases) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid submission request.")
		return
	}

	log.Printf("[Judge] Received code submission. Language ID: %d. Test cases: %d", req.LanguageID, len(req.TestCases))
	result, err := h.judgeSvc.Evaluate(r.Context(), req.SourceCode, req.LanguageID, req.TestCases)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
