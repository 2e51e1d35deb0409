package script

import "strings"

// FollowUp is a follow-up question with its nested probes in generation order.
type FollowUp struct {
	Question string   `json:"question"`
	Nested   []string `json:"nested"`
}

// Question is one claim from the resume and the probing tree built around it.
type Question struct {
	ID           int        `json:"id"`
	Claim        string     `json:"claim"`
	MainQuestion string     `json:"main_question"`
	Controls     Controls   `json:"controls"`
	FollowUps    []FollowUp `json:"follow_ups"`
}

// QuestionSet is produced by bulk generation only; Questions is never empty.
type QuestionSet struct {
	Questions []Question `json:"questions"`
}

// StoredQuestion is a previously produced question as clients send it back.
// Older clients put the controls at the top level instead of under "controls".
type StoredQuestion struct {
	Question
	Breadth Breadth `json:"breadth,omitempty"`
	Depth   Depth   `json:"depth,omitempty"`
	Persona Persona `json:"persona,omitempty"`
}

// Overrides are caller-forced controls; nil fields defer to the payload.
type Overrides struct {
	Breadth *Breadth
	Depth   *Depth
	Persona *Persona
}

// Exact pins all three axes.
func Exact(c Controls) Overrides {
	c = c.Normalize()
	return Overrides{Breadth: &c.Breadth, Depth: &c.Depth, Persona: &c.Persona}
}

// ResolveControls applies override → controls → legacy top-level → default per axis.
func (q StoredQuestion) ResolveControls(o Overrides) Controls {
	return resolveControls(o,
		layer{breadth: string(q.Controls.Breadth), depth: int(q.Controls.Depth), persona: string(q.Controls.Persona)},
		layer{breadth: string(q.Breadth), depth: int(q.Depth), persona: string(q.Persona)},
	)
}

// layer is one source of controls; zero fields are treated as absent.
type layer struct {
	breadth string
	depth   int
	persona string
}

func resolveControls(o Overrides, layers ...layer) Controls {
	out := DefaultControls

	if o.Breadth != nil {
		out.Breadth = *o.Breadth
	} else {
		for _, l := range layers {
			if b, ok := ParseBreadth(l.breadth); ok {
				out.Breadth = b
				break
			}
		}
	}

	if o.Depth != nil {
		out.Depth = *o.Depth
	} else {
		for _, l := range layers {
			if l.depth != 0 {
				out.Depth = Depth(l.depth)
				break
			}
		}
	}

	if o.Persona != nil {
		out.Persona = *o.Persona
	} else {
		for _, l := range layers {
			if p, ok := ParsePersona(l.persona); ok {
				out.Persona = p
				break
			}
		}
	}
	return out.Normalize()
}

// ParseOverrides builds overrides from loosely typed request fields. Empty
// strings and a zero depth mean "not set"; unknown names are rejected.
func ParseOverrides(breadth string, depth Depth, persona string) (Overrides, error) {
	var o Overrides
	if s := strings.TrimSpace(breadth); s != "" {
		b, ok := ParseBreadth(s)
		if !ok {
			return Overrides{}, invalid("breadth", "unknown value %q", s)
		}
		o.Breadth = &b
	}
	if depth != 0 {
		d := NormalizeDepth(int(depth))
		o.Depth = &d
	}
	if s := strings.TrimSpace(persona); s != "" {
		p, ok := ParsePersona(s)
		if !ok {
			return Overrides{}, invalid("persona", "unknown value %q", s)
		}
		o.Persona = &p
	}
	return o, nil
}
