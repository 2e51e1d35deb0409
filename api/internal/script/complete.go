package script

import "strings"

// Complete pads or truncates q so that it satisfies the policy for target.
// Existing follow-ups and nested entries keep their order; only the tail is
// appended to or cut. Blank follow-up text is filled from the bank and blank
// nested entries are dropped; non-blank text is kept byte for byte. The input
// is not modified.
//
// Identity fields are carried as they are; a question without id, claim or
// main question cannot be completed into a valid one.
func (p Policy) Complete(q Question, target Controls) Question {
	target = target.Normalize()
	fr := p.FollowUps(target.Breadth)
	nr := p.Nested(target.Depth)
	fuBank := bankFor(followUpBank, target.Persona)
	nBank := bankFor(nestedBank, target.Persona)

	out := q
	out.Controls = target

	n := len(q.FollowUps)
	if n > fr.Max {
		n = fr.Max
	}
	size := n
	if size < fr.Min {
		size = fr.Min
	}
	out.FollowUps = make([]FollowUp, 0, size)
	for i := 0; i < size; i++ {
		f := FollowUp{Nested: []string{}}
		if i < n {
			f.Question = q.FollowUps[i].Question
			for _, s := range q.FollowUps[i].Nested {
				if strings.TrimSpace(s) != "" {
					f.Nested = append(f.Nested, s)
				}
			}
		}
		if strings.TrimSpace(f.Question) == "" {
			f.Question = fillClaim(pick(fuBank, i), q.Claim)
		}

		if len(f.Nested) > nr.Max {
			f.Nested = f.Nested[:nr.Max]
		}
		for j := len(f.Nested); j < nr.Min; j++ {
			f.Nested = append(f.Nested, fillClaim(pick(nBank, j), q.Claim))
		}
		out.FollowUps = append(out.FollowUps, f)
	}
	return out
}
