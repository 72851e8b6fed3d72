package engagement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// scoreRegex matches a trailing integer on the evaluator's last output
// line, a last-line-score extraction convention narrowed here to a 0-9
// scale.
var scoreRegex = regexp.MustCompile(`([+-]?\d+)\s*$`)

// ExtractScore parses an evaluator's raw text output, returning the
// integer found on its last non-empty line. Scores outside 0-9 are
// rejected so a misbehaving evaluator can't produce an unlabelable
// verdict.
func ExtractScore(text string) (int, error) {
	trimmed := strings.TrimRight(text, "\n\r \t")
	if trimmed == "" {
		return 0, fmt.Errorf("empty evaluator output")
	}

	lastNewline := strings.LastIndex(trimmed, "\n")
	lastLine := trimmed
	if lastNewline != -1 {
		lastLine = trimmed[lastNewline+1:]
	}

	match := scoreRegex.FindStringSubmatch(lastLine)
	if match == nil {
		return 0, fmt.Errorf("no numeric score found on last line: %q", lastLine)
	}

	score, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("failed to parse score %q: %w", match[1], err)
	}
	if score < 0 || score > 9 {
		return 0, fmt.Errorf("score %d out of the 0-9 range", score)
	}
	return score, nil
}

// LabelFor maps a score to a label using thresholds, which must be
// sorted descending by MinScore (pkg/config's validator enforces this).
// It returns the first threshold the score meets or exceeds.
func LabelFor(thresholds []Threshold, score int) VerdictLabel {
	for _, t := range thresholds {
		if score >= t.MinScore {
			return t.Label
		}
	}
	return VerdictUnreachable
}
