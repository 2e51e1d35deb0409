package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"script-designer/api/internal/generator"
	"script-designer/api/internal/llm"
	"script-designer/api/internal/resume"
	"script-designer/api/internal/script"
	"script-designer/api/internal/store"
)

// Generator is the part of generator.Service the handlers use.
type Generator interface {
	GenerateQuestions(ctx context.Context, req generator.GenerateRequest) (script.QuestionSet, error)
	UpdateQuestion(ctx context.Context, req generator.UpdateRequest) (script.Question, error)
}

type ScriptStore interface {
	Save(ctx context.Context, recruiterID, resumeText string, questions json.RawMessage) (*store.Script, error)
	Get(ctx context.Context, id int64) (*store.Script, error)
}

type Handle struct {
	gen     Generator
	norm    *script.Normalizer
	scripts ScriptStore
	log     *zap.Logger
	timeout time.Duration
}

type Option func(*Handle)

// WithScripts enables the save/get script endpoints; without a store they
// answer 503.
func WithScripts(s ScriptStore) Option { return func(h *Handle) { h.scripts = s } }

func WithLogger(l *zap.Logger) Option {
	return func(h *Handle) {
		if l != nil {
			h.log = l
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(h *Handle) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func New(gen Generator, norm *script.Normalizer, opts ...Option) *Handle {
	h := &Handle{gen: gen, norm: norm, log: zap.NewNop(), timeout: 180 * time.Second}
	for _, o := range opts {
		o(h)
	}
	if h.norm == nil {
		h.norm = script.NewNormalizer(script.WithLogger(h.log))
	}
	return h
}

func (h *Handle) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestContext bounds a model call; X-Request-Timeout or ?timeoutSec= may
// shorten the configured deadline but never extend it.
func (h *Handle) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	deadline := h.timeout
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	if deadline > h.timeout {
		deadline = h.timeout
	}
	return context.WithTimeout(r.Context(), deadline)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorBody{Status: "error", Detail: detail})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var verr *script.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, llm.ErrUnknownEngine):
		return http.StatusBadRequest
	case errors.Is(err, resume.ErrUnsupportedType),
		errors.Is(err, resume.ErrNoText),
		errors.Is(err, generator.ErrResumeTooShort),
		errors.Is(err, script.ErrEmptyInput),
		errors.Is(err, script.ErrNoStructureFound),
		errors.Is(err, script.ErrUnrecoverablePayload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
