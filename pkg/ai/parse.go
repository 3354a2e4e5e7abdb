package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	minSubScore = 0
	maxSubScore = 10
)

// ParseEvaluation decodes the model's JSON answer into the variant for category.
// Synopsis fields that gate acceptance are mandatory; advisory fields fall back to
// their zero value (0, empty list, empty string) when the model omits them.
func ParseEvaluation(category Category, content string) (Evaluation, error) {
	raw, err := decodeObject(content)
	if err != nil {
		return Evaluation{}, err
	}

	evaluation := Evaluation{Category: category}
	switch category {
	case CategorySynopsis:
		synopsis, err := parseSynopsis(raw)
		if err != nil {
			return Evaluation{}, err
		}
		evaluation.Synopsis = &synopsis
	case CategoryLogic:
		evaluation.Logic = &LogicEvaluation{
			Inconsistencies:       stringListField(raw, "inconsistencies"),
			MissingLinks:          stringListField(raw, "missing_links"),
			TimelineValidity:      intFieldOrZero(raw, "timeline_validity"),
			ConflictSummary:       stringField(raw, "conflict_summary"),
			CorrectionSuggestions: stringField(raw, "correction_suggestions"),
		}
	case CategoryHypothesis:
		evaluation.Hypothesis = &HypothesisEvaluation{
			PlausibilityAssessment:      intFieldOrZero(raw, "plausibility_assessment"),
			Counterpoints:               stringListField(raw, "counterpoints"),
			EvidenceMatch:               stringField(raw, "evidence_match"),
			SuggestFurtherInvestigation: stringField(raw, "suggest_further_investigation"),
		}
	case CategoryBias:
		evaluation.Bias = &BiasEvaluation{
			DetectedBiases:    stringListField(raw, "detected_biases"),
			ObjectivityScore:  intFieldOrZero(raw, "objectivity_score"),
			ChallengePoints:   stringListField(raw, "challenge_points"),
			BiasImpactSummary: stringField(raw, "bias_impact_summary"),
		}
	default:
		return Evaluation{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	return evaluation, nil
}

func parseSynopsis(raw map[string]interface{}) (SynopsisEvaluation, error) {
	var scores [4]int
	for i, key := range []string{"clarity", "plausibility", "consistency", "relevance"} {
		value, ok := intField(raw, key)
		if !ok {
			return SynopsisEvaluation{}, fmt.Errorf("%w: missing or non-numeric %q", ErrEvaluation, key)
		}
		scores[i] = clampSubScore(value)
	}

	isSafe, ok := boolField(raw, "is_safe")
	if !ok {
		return SynopsisEvaluation{}, fmt.Errorf("%w: missing or non-boolean %q", ErrEvaluation, "is_safe")
	}

	return SynopsisEvaluation{
		SynopsisScores: SynopsisScores{
			Clarity:      scores[0],
			Plausibility: scores[1],
			Consistency:  scores[2],
			Relevance:    scores[3],
		},
		IsSafe:  isSafe,
		Flag:    stringField(raw, "flag"),
		Summary: stringField(raw, "summary"),
		Rank:    ParseRank(stringField(raw, "rank")),
	}, nil
}

func decodeObject(content string) (map[string]interface{}, error) {
	body := strings.TrimSpace(content)
	// Models without a JSON response format like to wrap the object in prose or a fence.
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: parse evaluation json: %v", ErrEvaluation, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: evaluation is not a json object", ErrEvaluation)
	}
	return raw, nil
}

func clampSubScore(value int) int {
	if value < minSubScore {
		return minSubScore
	}
	if value > maxSubScore {
		return maxSubScore
	}
	return value
}

// intField accepts whole numbers only. 7.0 and "7" are read as 7; 7.5 is
// malformed.
func intField(raw map[string]interface{}, key string) (int, bool) {
	switch v := raw[key].(type) {
	case float64:
		return wholeNumber(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.Atoi(trimmed); err == nil {
			return parsed, true
		}
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return wholeNumber(parsed)
		}
	}
	return 0, false
}

func wholeNumber(value float64) (int, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, false
	}
	return int(value), true
}

func intFieldOrZero(raw map[string]interface{}, key string) int {
	value, _ := intField(raw, key)
	return value
}

func boolField(raw map[string]interface{}, key string) (bool, bool) {
	switch v := raw[key].(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed, true
		}
	}
	return false, false
}

func stringField(raw map[string]interface{}, key string) string {
	switch v := raw[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		return strings.Join(toStrings(v), "; ")
	default:
		return fmt.Sprint(v)
	}
}

func stringListField(raw map[string]interface{}, key string) []string {
	switch v := raw[key].(type) {
	case []interface{}:
		return toStrings(v)
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return []string{trimmed}
		}
	}
	return []string{}
}

func toStrings(values []interface{}) []string {
	result := make([]string, 0, len(values))
	for _, item := range values {
		var text string
		switch v := item.(type) {
		case nil:
			continue
		case string:
			text = strings.TrimSpace(v)
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				text = fmt.Sprint(v)
			} else {
				text = string(encoded)
			}
		}
		if text != "" {
			result = append(result, text)
		}
	}
	return result
}
