package script

import (
	"regexp"
	"strconv"
	"strings"
)

// quotedValue captures a double-quoted or a single-quoted string literal, in
// that group order.
const quotedValue = `(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')`

// identityRe finds an id, then a claim, then a main_question, with anything
// in between. Keys and values may use either quote style.
var identityRe = regexp.MustCompile(
	`(?s)(?:["']|\b)id["']?\s*:\s*["']?(\d+)["']?` +
		`.*?["']claim["']\s*:\s*` + quotedValue +
		`.*?["']main_question["']\s*:\s*` + quotedValue)

// Salvage extracts the first id/claim/main_question triple from raw text and
// returns it as a minimal question with no follow-ups.
func Salvage(raw string) (Question, error) {
	m := identityRe.FindStringSubmatch(raw)
	if m == nil {
		return Question{}, ErrUnrecoverablePayload
	}
	q, ok := fromMatch(m)
	if !ok {
		return Question{}, ErrUnrecoverablePayload
	}
	return q, nil
}

// SalvageAll returns one minimal question per non-overlapping match.
func SalvageAll(raw string) ([]Question, error) {
	var out []Question
	for _, m := range identityRe.FindAllStringSubmatch(raw, -1) {
		if q, ok := fromMatch(m); ok {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, ErrUnrecoverablePayload
	}
	return out, nil
}

func fromMatch(m []string) (Question, bool) {
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return Question{}, false
	}
	q := Question{
		ID:           id,
		Claim:        literal(m[2], m[3]),
		MainQuestion: literal(m[4], m[5]),
		FollowUps:    []FollowUp{},
	}
	if q.Claim == "" || q.MainQuestion == "" {
		return Question{}, false
	}
	return q, true
}

// literal decodes whichever quoted form matched.
func literal(dbl, sgl string) string {
	if sgl != "" {
		// Rewrite as a JSON string first so \' and bare " come out right.
		return unescape(strings.TrimSuffix(strings.TrimPrefix(normalizeSingleQuotes("'"+sgl+"'"), `"`), `"`))
	}
	return unescape(dbl)
}

// unescape decodes JSON escapes in a captured value; raw text is kept when
// the escapes are broken.
func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		s = u
	}
	return strings.TrimSpace(s)
}
