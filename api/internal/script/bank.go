package script

import "strings"

// Template banks used when a reply is short of follow-ups or nested probes.
// Index i is used for the item at position i; positions past the end reuse
// the last entry. {claim} is replaced by the question's claim.
var (
	followUpBank = map[Persona][]string{
		PersonaEvidenceFirst: {
			"What concrete evidence shows your personal contribution to {claim}?",
			"Which artifacts (code, documents, dashboards) could you show for this work?",
			"Who else could confirm your role, and what would they say?",
			"What was the hardest technical detail you handled yourself?",
			"What would the commit history or tickets show about your part?",
		},
		PersonaWhyHow: {
			"Why did you take the approach you did on {claim}?",
			"How did you decide between the alternatives you considered?",
			"What trade-offs did you accept, and why?",
			"How would you approach it differently today?",
			"How did you validate that the decision was the right one?",
		},
		PersonaMetricsDriven: {
			"What measurable outcome did {claim} produce?",
			"What was the baseline before your work, and what was it after?",
			"How did you measure success, and which tools did you use?",
			"What did the numbers look like at the worst point of the project?",
			"Which metric moved least, and why?",
		},
		PersonaStorytelling: {
			"Walk me through how {claim} started.",
			"What was the turning point in the project?",
			"Who were the key people involved, and how did you work with them?",
			"What went wrong along the way, and how did the team respond?",
			"How did the story end, and what happened afterwards?",
		},
	}

	nestedBank = map[Persona][]string{
		PersonaEvidenceFirst: {
			"Can you give a specific example?",
			"What exactly did you do yourself, as opposed to the team?",
			"Where could I see the result today?",
			"What documentation exists for it?",
			"How was your work reviewed?",
		},
		PersonaWhyHow: {
			"Why was that the right call at the time?",
			"How did you weigh the risks?",
			"What would have happened if you had chosen differently?",
			"How did you get others to agree?",
			"What did you learn from that decision?",
		},
		PersonaMetricsDriven: {
			"What was the exact number?",
			"How did you measure it?",
			"Over what time period?",
			"How did it compare with the target?",
			"What else could explain the change?",
		},
		PersonaStorytelling: {
			"What happened next?",
			"How did you feel at that moment?",
			"Who else was involved?",
			"What was at stake?",
			"How did it change the way you work?",
		},
	}
)

func bankFor(banks map[Persona][]string, p Persona) []string {
	if b, ok := banks[p]; ok && len(b) > 0 {
		return b
	}
	return banks[PersonaWhyHow]
}

// pick clamps rather than wraps: an exhausted bank repeats its last entry.
func pick(bank []string, pos int) string {
	if pos >= len(bank) {
		pos = len(bank) - 1
	}
	if pos < 0 {
		pos = 0
	}
	return bank[pos]
}

func fillClaim(tmpl, claim string) string {
	claim = strings.TrimRight(strings.TrimSpace(claim), ".")
	if claim == "" {
		claim = "this work"
	}
	return strings.ReplaceAll(tmpl, "{claim}", claim)
}
