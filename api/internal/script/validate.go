package script

import "strings"

// Validate checks a decoded object against the policy for the controls
// resolved from o and the object itself. The first failing check is returned
// as a *ValidationError and obj is left untouched. On success the returned
// question carries exactly the resolved controls.
func (p Policy) Validate(obj map[string]any, o Overrides) (Question, error) {
	c := candidate(obj)
	target := c.resolve(o)
	if err := p.check(c, target); err != nil {
		return Question{}, err
	}
	q := c.question()
	q.Controls = target
	return q, nil
}

func (p Policy) check(c candidate, target Controls) error {
	if _, ok := c.id(); !ok {
		return invalid("id", "missing or not an integer")
	}
	if c.str("claim") == "" {
		return invalid("claim", "missing or empty")
	}
	if c.str("main_question") == "" {
		return invalid("main_question", "missing or empty")
	}

	items, ok := c["follow_ups"].([]any)
	if !ok {
		return invalid("follow_ups", "missing or not a list")
	}
	if r := p.FollowUps(target.Breadth); !r.Contains(len(items)) {
		return invalid("follow_ups", "got %d, breadth %s needs %s", len(items), target.Breadth, r)
	}

	nr := p.Nested(target.Depth)
	for i, it := range items {
		fu, ok := it.(map[string]any)
		if !ok {
			return invalid("follow_ups", "item %d is not an object", i)
		}
		if s, _ := fu["question"].(string); strings.TrimSpace(s) == "" {
			return invalid("follow_ups", "item %d has no question", i)
		}
		nested, ok := fu["nested"].([]any)
		if !ok {
			return invalid("nested", "item %d has no nested list", i)
		}
		for j, n := range nested {
			if s, _ := n.(string); strings.TrimSpace(s) == "" {
				return invalid("nested", "item %d entry %d is not a question", i, j)
			}
		}
		if !nr.Contains(len(nested)) {
			return invalid("nested", "item %d has %d, depth %d needs %s", i, len(nested), target.Depth, nr)
		}
	}
	return nil
}

// ValidateQuestion runs the same checks on an already typed question.
func (p Policy) ValidateQuestion(q Question, target Controls) error {
	return p.check(toCandidate(q), target.Normalize())
}
