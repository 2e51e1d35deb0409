package script

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Range holds inclusive bounds; single-value policy entries use Min == Max.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r Range) Contains(n int) bool { return n >= r.Min && n <= r.Max }

func (r Range) String() string {
	if r.Min == r.Max {
		return strconv.Itoa(r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Breadth controls how many follow-ups a question carries.
type Breadth string

const (
	BreadthLow    Breadth = "Low"
	BreadthMedium Breadth = "Medium"
	BreadthHigh   Breadth = "High"
)

// ParseBreadth is case-insensitive. ok=false means s was not recognised.
func ParseBreadth(s string) (Breadth, bool) {
	switch normalizeToken(s) {
	case "low":
		return BreadthLow, true
	case "medium", "med", "mid":
		return BreadthMedium, true
	case "high":
		return BreadthHigh, true
	}
	return "", false
}

// Depth is the nesting level of a follow-up: 1 (Low), 2 (Medium), 3 (High).
type Depth int

const (
	DepthLow    Depth = 1
	DepthMedium Depth = 2
	DepthHigh   Depth = 3
)

// NormalizeDepth folds legacy 0 ("None") and out-of-range values onto the three levels.
func NormalizeDepth(n int) Depth {
	switch {
	case n <= 1:
		return DepthLow
	case n >= 3:
		return DepthHigh
	default:
		return DepthMedium
	}
}

// ParseDepth accepts a number ("2") or a UI label ("Medium", "None").
func ParseDepth(s string) (Depth, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return NormalizeDepth(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NormalizeDepth(int(f)), true
	}
	switch normalizeToken(s) {
	case "none", "low":
		return DepthLow, true
	case "medium":
		return DepthMedium, true
	case "high":
		return DepthHigh, true
	}
	return 0, false
}

func (d Depth) Label() string {
	switch d {
	case DepthMedium:
		return "Medium"
	case DepthHigh:
		return "High"
	default:
		return "Low"
	}
}

// UnmarshalJSON tolerates both numbers and strings; clients of the old UI send "2".
func (d *Depth) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*d = 0
		return nil
	}
	if uq, err := strconv.Unquote(s); err == nil {
		s = uq
	}
	// 0 stays 0 so that resolution can fall through to the legacy field.
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n == 0 {
		*d = 0
		return nil
	}
	v, ok := ParseDepth(s)
	if !ok {
		return fmt.Errorf("script: bad depth %s", b)
	}
	*d = v
	return nil
}

// Persona selects the questioning style and the template bank used for repairs.
type Persona string

const (
	PersonaEvidenceFirst Persona = "Evidence-first"
	PersonaWhyHow        Persona = "Why-How"
	PersonaMetricsDriven Persona = "Metrics-driven"
	PersonaStorytelling  Persona = "Storytelling"
)

// ParsePersona recognises the four personas regardless of case and separators.
func ParsePersona(s string) (Persona, bool) {
	switch normalizeToken(s) {
	case "evidencefirst", "evidence":
		return PersonaEvidenceFirst, true
	case "whyhow":
		return PersonaWhyHow, true
	case "metricsdriven", "metrics":
		return PersonaMetricsDriven, true
	case "storytelling", "story":
		return PersonaStorytelling, true
	}
	return "", false
}

// PersonaOrDefault never fails: unknown values become Why-How.
func PersonaOrDefault(s string) Persona {
	if p, ok := ParsePersona(s); ok {
		return p
	}
	return PersonaWhyHow
}

// Controls is the (breadth, depth, persona) triple a question was built for.
type Controls struct {
	Breadth Breadth `json:"breadth"`
	Depth   Depth   `json:"depth"`
	Persona Persona `json:"persona"`
}

// DefaultControls is used when neither the caller nor the payload says otherwise.
var DefaultControls = Controls{Breadth: BreadthMedium, Depth: DepthLow, Persona: PersonaWhyHow}

// Policy maps breadth to the follow-up range and depth to the nested range.
type Policy struct {
	followUps map[Breadth]Range
	nested    map[Depth]Range
}

// DefaultPolicy is immutable after package init and safe for concurrent use.
var DefaultPolicy = Policy{
	followUps: map[Breadth]Range{
		BreadthLow:    {Min: 1, Max: 2},
		BreadthMedium: {Min: 2, Max: 3},
		BreadthHigh:   {Min: 4, Max: 5},
	},
	nested: map[Depth]Range{
		DepthLow:    {Min: 1, Max: 1},
		DepthMedium: {Min: 2, Max: 3},
		DepthHigh:   {Min: 4, Max: 5},
	},
}

// FollowUps returns the follow-up range; unknown breadth is treated as Medium.
func (p Policy) FollowUps(b Breadth) Range {
	if r, ok := p.followUps[b]; ok {
		return r
	}
	return p.followUps[BreadthMedium]
}

// Nested returns the per-follow-up nested range for d.
func (p Policy) Nested(d Depth) Range {
	if r, ok := p.nested[NormalizeDepth(int(d))]; ok {
		return r
	}
	return p.nested[DepthLow]
}

// Normalize returns c with every axis mapped onto a known value.
func (c Controls) Normalize() Controls {
	out := c
	if b, ok := ParseBreadth(string(c.Breadth)); ok {
		out.Breadth = b
	} else {
		out.Breadth = BreadthMedium
	}
	out.Depth = NormalizeDepth(int(c.Depth))
	out.Persona = PersonaOrDefault(string(c.Persona))
	return out
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

var _ json.Unmarshaler = (*Depth)(nil)
