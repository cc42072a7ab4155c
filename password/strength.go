package password

import (
	"strings"
	"unicode"
)

// MinLength is the policy floor for acceptable passwords.
const MinLength = 8

// StrengthReport is the result of scoring a candidate password. Score is
// 0–100; Valid reports whether the hard rule set passed. Scoring is a pure
// function of the input.
type StrengthReport struct {
	Valid      bool
	Violations []string
	Score      int
}

// commonSequences are substrings that materially reduce search cost for an
// attacker regardless of character classes present.
var commonSequences = []string{
	"1234",
	"abcd",
	"qwerty",
	"asdfgh",
	"password",
	"letmein",
}

// Score evaluates a candidate password against the rule set: minimum
// length, and at least one character from each of the upper, lower, digit,
// and symbol classes. The score rewards length tiers and class diversity
// and penalizes repeated-character runs and common sequences; a password
// can pass the gate and still score poorly.
func Score(candidate string) StrengthReport {
	var report StrengthReport

	hasUpper, hasLower, hasDigit, hasSymbol := classify(candidate)

	if len(candidate) < MinLength {
		report.Violations = append(report.Violations, "must be at least 8 characters")
	}
	if !hasUpper {
		report.Violations = append(report.Violations, "must contain an uppercase letter")
	}
	if !hasLower {
		report.Violations = append(report.Violations, "must contain a lowercase letter")
	}
	if !hasDigit {
		report.Violations = append(report.Violations, "must contain a digit")
	}
	if !hasSymbol {
		report.Violations = append(report.Violations, "must contain a symbol")
	}

	report.Valid = len(report.Violations) == 0

	score := 0
	switch {
	case len(candidate) >= 20:
		score += 50
	case len(candidate) >= 16:
		score += 45
	case len(candidate) >= 12:
		score += 35
	case len(candidate) >= MinLength:
		score += 25
	}

	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
		if present {
			score += 10
		}
	}

	score -= repeatedRunPenalty(candidate)
	score -= sequencePenalty(candidate)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	report.Score = score

	return report
}

func classify(candidate string) (hasUpper, hasLower, hasDigit, hasSymbol bool) {
	for _, r := range candidate {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return
}

// repeatedRunPenalty charges 5 points per run of 3+ identical characters,
// capped at 20.
func repeatedRunPenalty(candidate string) int {
	penalty := 0
	runes := []rune(candidate)

	runLength := 1
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && runes[i] == runes[i-1] {
			runLength++
			continue
		}
		if runLength >= 3 {
			penalty += 5
		}
		runLength = 1
	}

	if penalty > 20 {
		penalty = 20
	}
	return penalty
}

// sequencePenalty charges 10 points per distinct common sequence found,
// capped at 20. Matching is case-insensitive.
func sequencePenalty(candidate string) int {
	lowered := strings.ToLower(candidate)

	penalty := 0
	for _, seq := range commonSequences {
		if strings.Contains(lowered, seq) {
			penalty += 10
		}
	}

	if penalty > 20 {
		penalty = 20
	}
	return penalty
}
