package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"script-designer/api/internal/script"
	"script-designer/api/internal/util"
)

// MaxResumeChars bounds the resume excerpt sent to the model.
const MaxResumeChars = 8000

const questionShape = `{
  "id": 1,
  "claim": "specific claim from the resume",
  "main_question": "the main question",
  "controls": {
    "breadth": "Low|Medium|High",
    "depth": 1,
    "persona": "Evidence-first|Why-How|Metrics-driven|Storytelling"
  },
  "follow_ups": [
    {
      "question": "follow-up question text",
      "nested": ["nested question 1", "nested question 2"]
    }
  ]
}`

var (
	generateSystem = `You are an expert technical interviewer. Generate interview questions that verify real hands-on experience, decisions, trade-offs and outcomes claimed in a resume.

Return ONLY valid JSON in this exact format:
{"questions": [` + questionShape + `]}

Do not include markdown code fences, explanations or any other text.`

	updateSystem = `You are an expert interviewer. Rewrite the follow-ups of the given question for the requested parameters. Keep id, claim and main_question unchanged.

Return ONLY valid JSON in this exact format:
` + questionShape + `

Do not include markdown code fences, explanations or any other text.`
)

var personaLines = map[script.Persona]string{
	script.PersonaEvidenceFirst: "focus on concrete proof and tangible examples.",
	script.PersonaWhyHow:        "emphasize reasoning and decision-making.",
	script.PersonaMetricsDriven: "push for quantitative measures and numbers.",
	script.PersonaStorytelling:  "encourage a narrative with context and the journey.",
}

// systemPrompt returns the PROMPT_DIR override for name when one exists.
func systemPrompt(name, provider, builtin string) string {
	if s, ok := util.LoadPrompt(name, "system", provider); ok {
		return s
	}
	return builtin
}

// instructions spells out the cardinality the normalizer will enforce, so
// that a compliant model reply passes without repair.
func instructions(p script.Policy, c script.Controls) string {
	c = c.Normalize()
	var b strings.Builder
	fmt.Fprintf(&b, "BREADTH %s: every question has %s follow-up questions.\n", c.Breadth, p.FollowUps(c.Breadth))
	fmt.Fprintf(&b, "DEPTH %d (%s): every follow-up has %s nested questions.\n", c.Depth, c.Depth.Label(), p.Nested(c.Depth))
	fmt.Fprintf(&b, "PERSONA %s: %s", c.Persona, personaLines[c.Persona])
	return b.String()
}

func generateUserPrompt(p script.Policy, resumeText string, n int, c script.Controls) string {
	c = c.Normalize()
	return fmt.Sprintf(`Generate %d interview questions for this resume:

%s

Requirements:
- Breadth: %s
- Depth: %d
- Persona: %s

%s

Use ids 1 to %d. Return only valid JSON with the exact structure specified.`,
		n, util.TruncateRunes(resumeText, MaxResumeChars),
		c.Breadth, c.Depth, c.Persona,
		instructions(p, c), n)
}

func updateUserPrompt(p script.Policy, resumeText string, prior script.StoredQuestion, c script.Controls) string {
	q, _ := json.MarshalIndent(prior.Question, "", "  ")
	var ctx string
	if s := strings.TrimSpace(resumeText); s != "" {
		ctx = "\nResume excerpt for context:\n" + util.TruncateRunes(s, MaxResumeChars) + "\n"
	}
	return fmt.Sprintf(`Update this question with new parameters:

Original question: %s
%s
New parameters:
- Breadth: %s
- Depth: %d
- Persona: %s

%s

Return only valid JSON with the updated follow-ups.`,
		q, ctx, c.Breadth, c.Depth, c.Persona, instructions(p, c))
}
