package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"script-designer/api/internal/generator"
	"script-designer/api/internal/script"
)

type controlsReq struct {
	Breadth string       `json:"breadth"`
	Depth   script.Depth `json:"depth"`
	Persona string       `json:"persona"`
}

func (c controlsReq) overrides() (script.Overrides, error) {
	return script.ParseOverrides(c.Breadth, c.Depth, c.Persona)
}

type updateReq struct {
	ResumeText string                 `json:"resume_text"`
	Question   *script.StoredQuestion `json:"question"`
	LLMName    string                 `json:"llm_name"`
	controlsReq
}

func (h *Handle) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" || req.Question == nil {
		writeError(w, http.StatusBadRequest, "resume_text and question are required")
		return
	}
	o, err := req.overrides()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	q, err := h.gen.UpdateQuestion(ctx, generator.UpdateRequest{
		ResumeText: req.ResumeText,
		Question:   *req.Question,
		Overrides:  o,
		LLMName:    req.LLMName,
	})
	if err != nil {
		writeError(w, statusFor(err), "failed to update question: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": q})
}

type normalizeReq struct {
	Raw  string `json:"raw"`
	Mode string `json:"mode"`
	controlsReq
}

// Normalize runs a raw model reply through the normalizer without calling a
// model. Mode is "set" (default) or "question".
func (h *Handle) Normalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	o, err := req.overrides()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var out any
	switch strings.ToLower(strings.TrimSpace(req.Mode)) {
	case "", "set":
		out, err = h.norm.QuestionSet(req.Raw, o)
	case "question":
		out, err = h.norm.Question(req.Raw, o)
	default:
		writeError(w, http.StatusBadRequest, `mode must be "set" or "question"`)
		return
	}
	if err != nil {
		writeError(w, statusFor(err), "normalize error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": out})
}
