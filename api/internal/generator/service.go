package generator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"script-designer/api/internal/llm"
	"script-designer/api/internal/script"
	"script-designer/api/internal/util"
)

const (
	// MinResumeChars rejects uploads that are empty or clearly not a resume.
	MinResumeChars = 50
	DefaultCount   = 10
)

var ErrResumeTooShort = errors.New("resume text is too short or empty; upload a valid resume file")

// InitialControls are fixed for the first generation from an uploaded resume.
var InitialControls = script.Controls{
	Breadth: script.BreadthLow,
	Depth:   script.DepthLow,
	Persona: script.PersonaWhyHow,
}

// Cache stores normalized question sets. Implementations must be safe for
// concurrent use; a miss is (zero, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (script.QuestionSet, bool, error)
	Set(ctx context.Context, key string, set script.QuestionSet) error
}

type Service struct {
	engs  *llm.Engines
	norm  *script.Normalizer
	cache Cache
	log   *zap.Logger
}

type Option func(*Service)

func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func New(engs *llm.Engines, norm *script.Normalizer, opts ...Option) *Service {
	s := &Service{engs: engs, norm: norm, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	if s.norm == nil {
		s.norm = script.NewNormalizer(script.WithLogger(s.log))
	}
	return s
}

type GenerateRequest struct {
	ResumeText string
	Count      int
	Controls   script.Controls
	LLMName    string
}

// CheckResume applies the minimum-length rule for resume text.
func CheckResume(text string) error {
	if len([]rune(strings.TrimSpace(text))) < MinResumeChars {
		return ErrResumeTooShort
	}
	return nil
}

// GenerateQuestions returns a normalized set for the resume. Provider
// failures and unrecoverable replies degrade to the offline fallback set;
// only bad input and an unknown engine are returned as errors.
func (s *Service) GenerateQuestions(ctx context.Context, req GenerateRequest) (script.QuestionSet, error) {
	if err := CheckResume(req.ResumeText); err != nil {
		return script.QuestionSet{}, err
	}
	eng, err := s.engs.GetEngine(req.LLMName)
	if err != nil {
		return script.QuestionSet{}, err
	}
	n := req.Count
	if n <= 0 {
		n = DefaultCount
	}
	controls := req.Controls.Normalize()

	log := s.log.With(
		zap.String("generation_id", uuid.NewString()),
		zap.String("engine", eng.Name()),
		zap.String("model", eng.GetModel()),
		zap.Int("count", n),
		zap.String("breadth", string(controls.Breadth)),
		zap.Int("depth", int(controls.Depth)),
		zap.String("persona", string(controls.Persona)),
	)

	key := cacheKey(eng, n, controls, req.ResumeText)
	if s.cache != nil {
		set, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache get failed", zap.Error(err))
		} else if ok && len(set.Questions) > 0 {
			log.Debug("question set served from cache")
			return set, nil
		}
	}

	system := systemPrompt("questions", eng.Name(), generateSystem)
	raw, err := eng.Complete(ctx, system, generateUserPrompt(s.norm.Policy(), req.ResumeText, n, controls))
	if err != nil {
		log.Error("engine call failed; using fallback questions", zap.Error(err))
		return s.fallback(controls), nil
	}

	set, err := s.norm.QuestionSet(raw, script.Exact(controls))
	if err != nil {
		log.Error("model reply unusable; using fallback questions", zap.Error(err), zap.Int("reply_len", len(raw)))
		return s.fallback(controls), nil
	}
	if len(set.Questions) > n {
		set.Questions = set.Questions[:n]
	}
	log.Info("questions generated", zap.Int("questions", len(set.Questions)))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, set); err != nil {
			log.Warn("cache set failed", zap.Error(err))
		}
	}
	return set, nil
}

type UpdateRequest struct {
	ResumeText string
	Question   script.StoredQuestion
	Overrides  script.Overrides
	LLMName    string
}

// UpdateQuestion regenerates the follow-ups of a stored question for the
// resolved controls. Unlike GenerateQuestions it reports provider and
// normalization failures to the caller.
func (s *Service) UpdateQuestion(ctx context.Context, req UpdateRequest) (script.Question, error) {
	prior := req.Question
	if strings.TrimSpace(prior.Claim) == "" || strings.TrimSpace(prior.MainQuestion) == "" {
		return script.Question{}, &script.ValidationError{Field: "question", Reason: "claim and main_question are required"}
	}
	eng, err := s.engs.GetEngine(req.LLMName)
	if err != nil {
		return script.Question{}, err
	}
	target := prior.ResolveControls(req.Overrides)

	log := s.log.With(
		zap.Int("question_id", prior.ID),
		zap.String("engine", eng.Name()),
		zap.String("breadth", string(target.Breadth)),
		zap.Int("depth", int(target.Depth)),
		zap.String("persona", string(target.Persona)),
	)

	system := systemPrompt("update", eng.Name(), updateSystem)
	raw, err := eng.Complete(ctx, system, updateUserPrompt(s.norm.Policy(), req.ResumeText, prior, target))
	if err != nil {
		log.Error("engine call failed", zap.Error(err))
		return script.Question{}, fmt.Errorf("update question %d: %w", prior.ID, err)
	}
	q, err := s.norm.Question(raw, script.Exact(target))
	if err != nil {
		log.Error("model reply unusable", zap.Error(err), zap.Int("reply_len", len(raw)))
		return script.Question{}, fmt.Errorf("update question %d: %w", prior.ID, err)
	}
	// Clients address questions by id; the model is not trusted to keep it.
	if prior.ID != 0 {
		q.ID = prior.ID
	}
	log.Info("question updated", zap.Int("follow_ups", len(q.FollowUps)))
	return q, nil
}

// fallback is the offline question set used when the model cannot help.
func (s *Service) fallback(c script.Controls) script.QuestionSet {
	q := script.Question{
		ID:           1,
		Claim:        "Professional experience mentioned in resume",
		MainQuestion: "Can you walk me through your most significant professional experience?",
		FollowUps: []script.FollowUp{
			{Question: "What were the main challenges you faced?", Nested: []string{"How did you overcome those challenges?"}},
			{Question: "What was the impact of your work?", Nested: []string{"How did you measure success?"}},
		},
	}
	return script.QuestionSet{Questions: []script.Question{s.norm.Complete(q, c)}}
}

func cacheKey(eng llm.Engine, n int, c script.Controls, resumeText string) string {
	return "questions:" + util.SHA256Hex(
		eng.Name(), eng.GetModel(), strconv.Itoa(n),
		string(c.Breadth), strconv.Itoa(int(c.Depth)), string(c.Persona),
		strings.TrimSpace(resumeText),
	)
}
