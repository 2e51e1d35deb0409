package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// candidate is a decoded but untrusted JSON object.
type candidate map[string]any

// decodeObject decodes an extracted payload. Numbers stay json.Number so that
// ids survive without float rounding.
func decodeObject(payload string) (candidate, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("decode: not an object")
	}
	return candidate(obj), nil
}

func (c candidate) str(key string) string {
	s, _ := c[key].(string)
	return strings.TrimSpace(s)
}

// id returns the integer id; ok=false when absent or not an integer.
func (c candidate) id() (int, bool) {
	return asInt(c["id"])
}

func (c candidate) hasIdentity() bool {
	_, ok := c.id()
	return ok && c.str("claim") != "" && c.str("main_question") != ""
}

func (c candidate) controlsLayer() layer {
	ctl, _ := c["controls"].(map[string]any)
	return layerOf(ctl)
}

func (c candidate) legacyLayer() layer {
	return layerOf(c)
}

func layerOf(m map[string]any) layer {
	if m == nil {
		return layer{}
	}
	var l layer
	l.breadth, _ = m["breadth"].(string)
	l.persona, _ = m["persona"].(string)
	switch v := m["depth"].(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			l.depth = n
		} else if d, ok := ParseDepth(v); ok {
			l.depth = int(d)
		}
	default:
		if n, ok := asInt(v); ok {
			l.depth = n
		}
	}
	return l
}

// resolve picks the controls this candidate is held to.
func (c candidate) resolve(o Overrides) Controls {
	return resolveControls(o, c.controlsLayer(), c.legacyLayer())
}

// question coerces the candidate into a Question, keeping only well-formed
// follow-ups and nested entries. Controls are left for the caller to set.
func (c candidate) question() Question {
	id, _ := c.id()
	q := Question{
		ID:           id,
		Claim:        c.str("claim"),
		MainQuestion: c.str("main_question"),
	}
	items, _ := c["follow_ups"].([]any)
	for _, it := range items {
		fu, ok := it.(map[string]any)
		if !ok {
			continue
		}
		text, _ := fu["question"].(string)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		f := FollowUp{Question: text, Nested: []string{}}
		nested, _ := fu["nested"].([]any)
		for _, n := range nested {
			if s, ok := n.(string); ok && strings.TrimSpace(s) != "" {
				f.Nested = append(f.Nested, strings.TrimSpace(s))
			}
		}
		q.FollowUps = append(q.FollowUps, f)
	}
	return q
}

// questions returns the raw members of a set payload. A lone question object
// is treated as a set of one.
func (c candidate) questions() ([]candidate, bool) {
	if arr, ok := c["questions"].([]any); ok {
		out := make([]candidate, 0, len(arr))
		for _, it := range arr {
			if m, ok := it.(map[string]any); ok {
				out = append(out, candidate(m))
			} else {
				out = append(out, candidate{})
			}
		}
		return out, true
	}
	if _, ok := c["main_question"]; ok {
		return []candidate{c}, true
	}
	return nil, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil && integral(f) {
			return int(f), true
		}
	case float64:
		if integral(n) {
			return int(n), true
		}
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// integral reports whether f is a whole number that fits in an int64.
// float64(math.MaxInt64) rounds up to 2^63, hence the strict bound.
func integral(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

// toCandidate round-trips a typed question through JSON so it can be checked
// by the same validator that sees model output.
func toCandidate(q Question) candidate {
	b, _ := json.Marshal(q)
	obj, err := decodeObject(string(bytes.TrimSpace(b)))
	if err != nil {
		return candidate{}
	}
	return obj
}
