package ai

import (
	"fmt"
	"strings"
)

func evaluatorSystemPrompt() string {
	return "You review user-submitted theories about public cases. Respond with a single valid JSON object " +
		"using exactly the keys requested and no surrounding prose."
}

func buildUserPrompt(input EvaluationInput) (string, error) {
	builder := strings.Builder{}

	switch input.Category {
	case CategorySynopsis:
		builder.WriteString("You are reviewing a user-submitted theory on a public case.\n\n")
		writeSection(&builder, "Case", input.CaseText)
		writeSection(&builder, "User Submitted Theory", input.UserText)
		builder.WriteString("Provide:\n")
		builder.WriteString("1. clarity (0-10): How clearly is the theory communicated?\n")
		builder.WriteString("2. plausibility (0-10): Is the theory realistic based on known facts or reasoning?\n")
		builder.WriteString("3. consistency (0-10): Does the theory contradict itself or known timelines?\n")
		builder.WriteString("4. relevance (0-10): Is the theory on-topic and tied to the case?\n")
		builder.WriteString("5. flag (text): Flag contradictions or timeline errors (e.g. person in two places, unsupported motive) if any.\n")
		builder.WriteString("6. is_safe (bool): false if any part of the theory contains harmful, explicit, or offensive material.\n")
		builder.WriteString("7. summary (text): A short summary and constructive feedback.\n")
		builder.WriteString("8. rank (Gold, Silver, Bronze, None): Rank the theory based on the above criteria.\n\n")
		builder.WriteString("Return JSON with keys: clarity, plausibility, consistency, relevance, flag, is_safe, summary, rank.")
	case CategoryLogic:
		builder.WriteString("You are verifying the timeline and logic of a submitted theory.\n\n")
		writeSection(&builder, "Case", input.CaseText)
		writeSection(&builder, "User Submitted Theory", input.UserText)
		builder.WriteString("Provide:\n")
		builder.WriteString("1. inconsistencies (list): Detected contradictions or impossible events.\n")
		builder.WriteString("2. missing_links (list): Major gaps or unsupported jumps in the story.\n")
		builder.WriteString("3. timeline_validity (0-10): How well the chronology matches known facts.\n")
		builder.WriteString("4. conflict_summary (text): The major timeline issues, explained simply.\n")
		builder.WriteString("5. correction_suggestions (text): Ways the user could fix timeline problems.\n\n")
		builder.WriteString("Return JSON with keys: inconsistencies, missing_links, timeline_validity, conflict_summary, correction_suggestions.")
	case CategoryHypothesis:
		builder.WriteString("You are critically evaluating a hypothesis about a case.\n\n")
		writeSection(&builder, "Case Details", input.CaseText)
		writeSection(&builder, "User Hypothesis", input.UserText)
		builder.WriteString("Provide:\n")
		builder.WriteString("1. plausibility_assessment (0-10): How likely the hypothesis is based on known facts.\n")
		builder.WriteString("2. counterpoints (list): Logical counter-arguments or alternative explanations.\n")
		builder.WriteString("3. evidence_match (text): Whether supporting evidence exists for the hypothesis.\n")
		builder.WriteString("4. suggest_further_investigation (text): Additional evidence that could confirm or refute it.\n\n")
		builder.WriteString("Return JSON with keys: plausibility_assessment, counterpoints, evidence_match, suggest_further_investigation.")
	case CategoryBias:
		builder.WriteString("You are identifying bias in case theories.\n\n")
		writeSection(&builder, "Case Details", input.CaseText)
		writeSection(&builder, "User Submission", input.UserText)
		builder.WriteString("Provide:\n")
		builder.WriteString("1. detected_biases (list): Confirmation bias, emotional bias, or logical fallacies.\n")
		builder.WriteString("2. objectivity_score (0-10): How objective the theory is.\n")
		builder.WriteString("3. challenge_points (list): Questions that encourage rethinking the theory.\n")
		builder.WriteString("4. bias_impact_summary (text): How the biases might mislead the investigation.\n\n")
		builder.WriteString("Return JSON with keys: detected_biases, objectivity_score, challenge_points, bias_impact_summary.")
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, input.Category)
	}

	return builder.String(), nil
}

func writeSection(builder *strings.Builder, title, body string) {
	builder.WriteString("## ")
	builder.WriteString(title)
	builder.WriteString("\n")
	builder.WriteString(body)
	builder.WriteString("\n\n")
}
