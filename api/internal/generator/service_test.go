package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"script-designer/api/internal/llm"
	"script-designer/api/internal/script"
)

const resumeText = `Jane Doe, Staff Engineer.
Led the migration of the billing platform to Kubernetes, cutting deploy time from 40 to 6 minutes.
Owned the public payments API used by 300 merchants.`

type fakeEngine struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	systems []string
	users   []string
}

func (f *fakeEngine) Name() string     { return "gpt" }
func (f *fakeEngine) GetModel() string { return "fake-model" }

func (f *fakeEngine) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	return f.reply, f.err
}

type memCache struct {
	mu   sync.Mutex
	m    map[string]script.QuestionSet
	gets int
	err  error
}

func (c *memCache) Get(_ context.Context, key string) (script.QuestionSet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.err != nil {
		return script.QuestionSet{}, false, c.err
	}
	s, ok := c.m[key]
	return s, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, set script.QuestionSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.m == nil {
		c.m = map[string]script.QuestionSet{}
	}
	c.m[key] = set
	return nil
}

func newService(t *testing.T, eng llm.Engine, opts ...Option) *Service {
	opts = append(opts, WithLogger(zaptest.NewLogger(t)))
	return New(&llm.Engines{OpenAI: eng, Default: "openai"}, nil, opts...)
}

func TestGenerateQuestions(t *testing.T) {
	eng := &fakeEngine{reply: "```json\n" + `{"questions": [
		{"id": 1, "claim": "Led the billing migration", "main_question": "How did the migration go?", "follow_ups": []},
		{"id": 2, "claim": "Owned the payments API", "main_question": "What did owning the API involve?"},
		{"id": 3, "claim": "Cut deploy time", "main_question": "How?"}
	]}` + "\n```"}
	svc := newService(t, eng)

	set, err := svc.GenerateQuestions(context.Background(), GenerateRequest{
		ResumeText: resumeText,
		Count:      2,
		Controls:   InitialControls,
	})
	require.NoError(t, err)
	require.Len(t, set.Questions, 2)
	for _, q := range set.Questions {
		assert.Equal(t, InitialControls, q.Controls)
		assert.NoError(t, script.DefaultPolicy.ValidateQuestion(q, InitialControls))
	}

	require.Len(t, eng.users, 1)
	assert.Contains(t, eng.users[0], "Generate 2 interview questions")
	assert.Contains(t, eng.users[0], "BREADTH Low: every question has 1-2 follow-up questions.")
	assert.Contains(t, eng.users[0], "Owned the public payments API")
	assert.Contains(t, eng.systems[0], `"questions"`)
}

func TestGenerateQuestionsFallback(t *testing.T) {
	tests := []struct {
		name string
		eng  *fakeEngine
	}{
		{"provider_error", &fakeEngine{err: errors.New("openai chat 502: bad gateway")}},
		{"unrecoverable_reply", &fakeEngine{reply: "I'm sorry, I can't help with that."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := script.Controls{Breadth: script.BreadthHigh, Depth: script.DepthMedium, Persona: script.PersonaStorytelling}
			set, err := newService(t, tt.eng).GenerateQuestions(context.Background(), GenerateRequest{
				ResumeText: resumeText,
				Controls:   target,
			})
			require.NoError(t, err)
			require.Len(t, set.Questions, 1)
			q := set.Questions[0]
			assert.Equal(t, "Professional experience mentioned in resume", q.Claim)
			assert.Equal(t, "What were the main challenges you faced?", q.FollowUps[0].Question)
			assert.NoError(t, script.DefaultPolicy.ValidateQuestion(q, target))
		})
	}
}

func TestGenerateQuestionsRejects(t *testing.T) {
	svc := newService(t, &fakeEngine{})

	_, err := svc.GenerateQuestions(context.Background(), GenerateRequest{ResumeText: "too short"})
	assert.ErrorIs(t, err, ErrResumeTooShort)

	_, err = svc.GenerateQuestions(context.Background(), GenerateRequest{ResumeText: resumeText, LLMName: "gemini"})
	assert.ErrorIs(t, err, llm.ErrUnknownEngine)
}

func TestGenerateQuestionsCache(t *testing.T) {
	eng := &fakeEngine{reply: `{"questions": [{"id": 1, "claim": "c", "main_question": "m"}]}`}
	cache := &memCache{}
	svc := newService(t, eng, WithCache(cache))
	req := GenerateRequest{ResumeText: resumeText, Controls: InitialControls}

	first, err := svc.GenerateQuestions(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.GenerateQuestions(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, eng.calls)
	assert.Equal(t, first, second)

	req.Controls.Persona = script.PersonaMetricsDriven
	_, err = svc.GenerateQuestions(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, eng.calls, "different controls must miss the cache")
}

func TestGenerateQuestionsCacheErrorsIgnored(t *testing.T) {
	eng := &fakeEngine{reply: `{"questions": [{"id": 1, "claim": "c", "main_question": "m"}]}`}
	svc := newService(t, eng, WithCache(&memCache{err: errors.New("redis: connection refused")}))

	set, err := svc.GenerateQuestions(context.Background(), GenerateRequest{ResumeText: resumeText})
	require.NoError(t, err)
	assert.Len(t, set.Questions, 1)
}

func TestGenerateQuestionsFallbackNotCached(t *testing.T) {
	eng := &fakeEngine{err: errors.New("timeout")}
	cache := &memCache{}
	svc := newService(t, eng, WithCache(cache))

	_, err := svc.GenerateQuestions(context.Background(), GenerateRequest{ResumeText: resumeText})
	require.NoError(t, err)
	assert.Empty(t, cache.m)
}

func TestUpdateQuestion(t *testing.T) {
	eng := &fakeEngine{reply: `{"id": 99, "claim": "Led the billing migration", "main_question": "How did the migration go?",
		"follow_ups": [{"question": "What broke first?", "nested": ["How many services?"]}]}`}
	svc := newService(t, eng)

	prior := script.StoredQuestion{
		Question: script.Question{
			ID:           4,
			Claim:        "Led the billing migration",
			MainQuestion: "How did the migration go?",
			Controls:     script.Controls{Breadth: script.BreadthLow, Depth: script.DepthLow, Persona: script.PersonaWhyHow},
		},
	}
	q, err := svc.UpdateQuestion(context.Background(), UpdateRequest{
		ResumeText: resumeText,
		Question:   prior,
		Overrides:  script.Overrides{Persona: ptr(script.PersonaMetricsDriven), Depth: ptr(script.DepthMedium)},
	})
	require.NoError(t, err)

	want := script.Controls{Breadth: script.BreadthLow, Depth: script.DepthMedium, Persona: script.PersonaMetricsDriven}
	assert.Equal(t, 4, q.ID)
	assert.Equal(t, want, q.Controls)
	assert.Equal(t, "What broke first?", q.FollowUps[0].Question)
	assert.Equal(t, []string{"How many services?", "How did you measure it?"}, q.FollowUps[0].Nested)
	assert.NoError(t, script.DefaultPolicy.ValidateQuestion(q, want))

	require.Len(t, eng.users, 1)
	assert.True(t, strings.Contains(eng.users[0], "- Persona: Metrics-driven"))
	assert.Contains(t, eng.users[0], "DEPTH 2 (Medium)")
}

func TestUpdateQuestionErrors(t *testing.T) {
	prior := script.StoredQuestion{Question: script.Question{ID: 1, Claim: "c", MainQuestion: "m"}}

	_, err := newService(t, &fakeEngine{err: errors.New("boom")}).UpdateQuestion(context.Background(), UpdateRequest{Question: prior})
	assert.ErrorContains(t, err, "boom")

	_, err = newService(t, &fakeEngine{reply: "no"}).UpdateQuestion(context.Background(), UpdateRequest{Question: prior})
	assert.ErrorIs(t, err, script.ErrUnrecoverablePayload)

	_, err = newService(t, &fakeEngine{}).UpdateQuestion(context.Background(), UpdateRequest{})
	var verr *script.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCheckResume(t *testing.T) {
	assert.ErrorIs(t, CheckResume("   "), ErrResumeTooShort)
	assert.ErrorIs(t, CheckResume(strings.Repeat("é", 49)), ErrResumeTooShort)
	assert.NoError(t, CheckResume(strings.Repeat("é", 50)))
}

func ptr[T any](v T) *T { return &v }
