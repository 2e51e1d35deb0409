package script

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	allBreadths = []Breadth{BreadthLow, BreadthMedium, BreadthHigh}
	allDepths   = []Depth{DepthLow, DepthMedium, DepthHigh}
	allPersonas = []Persona{PersonaEvidenceFirst, PersonaWhyHow, PersonaMetricsDriven, PersonaStorytelling}
)

// shapes are inputs of varying size fed to the completer.
func shapes() []Question {
	base := Question{ID: 9, Claim: "Shipped the billing rewrite.", MainQuestion: "What did you ship?"}

	empty := base
	empty.FollowUps = nil

	one := base
	one.FollowUps = []FollowUp{{Question: "Who asked for it?"}}

	wide := base
	for i := 0; i < 7; i++ {
		fu := FollowUp{Question: fmt.Sprintf("follow-up %d", i)}
		for j := 0; j < 6; j++ {
			fu.Nested = append(fu.Nested, fmt.Sprintf("nested %d.%d", i, j))
		}
		wide.FollowUps = append(wide.FollowUps, fu)
	}

	blanks := base
	blanks.FollowUps = []FollowUp{{Question: "  ", Nested: []string{"", " keep me "}}}

	return []Question{empty, one, wide, blanks}
}

func TestCompleteRangeInvariant(t *testing.T) {
	p := DefaultPolicy
	for _, b := range allBreadths {
		for _, d := range allDepths {
			for _, pe := range allPersonas {
				target := Controls{b, d, pe}
				for i, in := range shapes() {
					out := p.Complete(in, target)
					assert.Equal(t, target, out.Controls)
					assert.True(t, p.FollowUps(b).Contains(len(out.FollowUps)), "%v shape %d: %d follow-ups", target, i, len(out.FollowUps))
					for _, fu := range out.FollowUps {
						assert.NotEmpty(t, fu.Question)
						assert.True(t, p.Nested(d).Contains(len(fu.Nested)), "%v shape %d: %d nested", target, i, len(fu.Nested))
					}
					assert.NoError(t, p.ValidateQuestion(out, target), "%v shape %d", target, i)
				}
			}
		}
	}
}

func TestCompleteIdempotent(t *testing.T) {
	p := DefaultPolicy
	for _, b := range allBreadths {
		for _, d := range allDepths {
			target := Controls{b, d, PersonaMetricsDriven}
			for _, in := range shapes() {
				once := p.Complete(in, target)
				twice := p.Complete(once, target)
				if diff := cmp.Diff(once, twice); diff != "" {
					t.Errorf("%v: second pass changed the question (-once +twice):\n%s", target, diff)
				}
			}
		}
	}
}

func TestCompleteValidatedQuestionUnchanged(t *testing.T) {
	q, err := DefaultPolicy.Validate(mustDecode(t, validMedium), Overrides{})
	require.NoError(t, err)

	out := DefaultPolicy.Complete(q, q.Controls)
	if diff := cmp.Diff(q, out); diff != "" {
		t.Errorf("Complete changed a valid question (-want +got):\n%s", diff)
	}
}

func TestCompleteKeepsPaddedText(t *testing.T) {
	target := Controls{BreadthLow, DepthLow, PersonaWhyHow}
	q := Question{
		ID:           2,
		Claim:        "Ran the on-call rotation.",
		MainQuestion: "How did on-call work?",
		Controls:     target,
		FollowUps:    []FollowUp{{Question: "Why? ", Nested: []string{" n "}}},
	}
	require.NoError(t, DefaultPolicy.ValidateQuestion(q, target))

	out := DefaultPolicy.Complete(q, target)
	if diff := cmp.Diff(q, out); diff != "" {
		t.Errorf("Complete changed a valid question (-want +got):\n%s", diff)
	}
}

func TestCompletePreservesPrefix(t *testing.T) {
	in := shapes()[2] // seven follow-ups, six nested each
	out := DefaultPolicy.Complete(in, Controls{BreadthMedium, DepthMedium, PersonaWhyHow})

	require.Len(t, out.FollowUps, 3)
	for i, fu := range out.FollowUps {
		assert.Equal(t, in.FollowUps[i].Question, fu.Question)
		assert.Equal(t, in.FollowUps[i].Nested[:3], fu.Nested)
	}

	out = DefaultPolicy.Complete(shapes()[1], Controls{BreadthHigh, DepthLow, PersonaWhyHow})
	require.Len(t, out.FollowUps, 4)
	assert.Equal(t, "Who asked for it?", out.FollowUps[0].Question)
	assert.Equal(t, "How did you decide between the alternatives you considered?", out.FollowUps[1].Question)
}

func TestCompleteFillsFromPersonaBank(t *testing.T) {
	out := DefaultPolicy.Complete(shapes()[0], Controls{BreadthLow, DepthMedium, PersonaMetricsDriven})
	require.Len(t, out.FollowUps, 1)
	assert.Equal(t, "What measurable outcome did Shipped the billing rewrite produce?", out.FollowUps[0].Question)
	assert.Equal(t, []string{"What was the exact number?", "How did you measure it?"}, out.FollowUps[0].Nested)
}

func TestCompleteRepairsBlanks(t *testing.T) {
	out := DefaultPolicy.Complete(shapes()[3], Controls{BreadthLow, DepthLow, PersonaStorytelling})
	require.Len(t, out.FollowUps, 1)
	assert.Equal(t, "Walk me through how Shipped the billing rewrite started.", out.FollowUps[0].Question)
	assert.Equal(t, []string{" keep me "}, out.FollowUps[0].Nested)
}

func TestCompleteDoesNotMutateInput(t *testing.T) {
	in := shapes()[2]
	snapshot := shapes()[2]
	_ = DefaultPolicy.Complete(in, Controls{BreadthLow, DepthLow, PersonaWhyHow})
	if diff := cmp.Diff(snapshot, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestPickClamps(t *testing.T) {
	bank := []string{"a", "b"}
	assert.Equal(t, "a", pick(bank, 0))
	assert.Equal(t, "b", pick(bank, 1))
	assert.Equal(t, "b", pick(bank, 9))
	assert.Equal(t, "this work", fillClaim("{claim}", "  "))
}
