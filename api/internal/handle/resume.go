package handle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"script-designer/api/internal/generator"
	"script-designer/api/internal/resume"
	"script-designer/api/internal/util"
)

const maxUpload = 10 << 20

type uploadJSON struct {
	Filename string `json:"filename"`
	FileB64  string `json:"file_b64"`
	LLMName  string `json:"llm_name"`
}

type upload struct {
	content  []byte
	filename string
	llmName  string
}

var errNoFile = errors.New("file is required")

// readUpload accepts a multipart "file" field or a JSON body carrying the
// document as base64 (plain or data: URL).
func readUpload(r *http.Request) (upload, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req uploadJSON
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUpload*2)).Decode(&req); err != nil {
			return upload{}, fmt.Errorf("bad json: %w", err)
		}
		if strings.TrimSpace(req.FileB64) == "" {
			return upload{}, errNoFile
		}
		b, hint, err := util.DecodeBase64MaybeDataURL(req.FileB64)
		if err != nil || len(b) == 0 {
			return upload{}, errors.New("bad file_b64")
		}
		name := req.Filename
		if name == "" && hint == "application/pdf" {
			name = "resume.pdf"
		}
		return upload{content: b, filename: name, llmName: req.LLMName}, nil
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return upload{}, fmt.Errorf("bad multipart form: %w", err)
	}
	f, fh, err := r.FormFile("file")
	if err != nil {
		return upload{}, errNoFile
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, maxUpload))
	if err != nil {
		return upload{}, fmt.Errorf("read file: %w", err)
	}
	return upload{content: b, filename: fh.Filename, llmName: r.FormValue("llm_name")}, nil
}

func (h *Handle) resumeText(w http.ResponseWriter, r *http.Request) (string, upload, bool) {
	up, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", up, false
	}
	text, err := resume.Parse(up.content, up.filename)
	if err == nil {
		err = generator.CheckResume(text)
	}
	if err != nil {
		h.log.Warn("resume rejected", zap.String("filename", up.filename), zap.Error(err))
		writeError(w, statusFor(err), "failed to process resume: "+err.Error())
		return "", up, false
	}
	return text, up, true
}

func (h *Handle) UploadResume(w http.ResponseWriter, r *http.Request) {
	text, _, ok := h.resumeText(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "resume_text": text})
}

func (h *Handle) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	text, up, ok := h.resumeText(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	set, err := h.gen.GenerateQuestions(ctx, generator.GenerateRequest{
		ResumeText: text,
		Count:      generator.DefaultCount,
		Controls:   generator.InitialControls,
		LLMName:    up.llmName,
	})
	if err != nil {
		writeError(w, statusFor(err), "failed to generate questions: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": set})
}
