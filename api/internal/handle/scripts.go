package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"script-designer/api/internal/store"
)

type saveScriptReq struct {
	RecruiterID   string          `json:"recruiter_id"`
	ResumeText    string          `json:"resume_text"`
	QuestionsJSON json.RawMessage `json:"questions_json"`
}

func (h *Handle) SaveScript(w http.ResponseWriter, r *http.Request) {
	if h.scripts == nil {
		writeError(w, http.StatusServiceUnavailable, "script storage is not configured")
		return
	}
	var req saveScriptReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if len(req.RecruiterID) > 50 {
		writeError(w, http.StatusBadRequest, "recruiter_id is longer than 50 characters")
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" || len(req.QuestionsJSON) == 0 || string(req.QuestionsJSON) == "null" {
		writeError(w, http.StatusBadRequest, "resume_text and questions_json are required")
		return
	}
	// Older clients send questions_json as an already-encoded string.
	var encoded string
	if err := json.Unmarshal(req.QuestionsJSON, &encoded); err == nil {
		if !json.Valid([]byte(encoded)) {
			writeError(w, http.StatusBadRequest, "questions_json string is not valid JSON")
			return
		}
		req.QuestionsJSON = json.RawMessage(encoded)
	}

	s, err := h.scripts.Save(r.Context(), req.RecruiterID, req.ResumeText, req.QuestionsJSON)
	if err != nil {
		h.log.Error("save script failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save script: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handle) GetScript(w http.ResponseWriter, r *http.Request) {
	if h.scripts == nil {
		writeError(w, http.StatusServiceUnavailable, "script storage is not configured")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad script id")
		return
	}
	s, err := h.scripts.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "script with ID "+strconv.FormatInt(id, 10)+" not found")
		return
	}
	if err != nil {
		h.log.Error("get script failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get script")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
