package quiz

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/width"
)

// Answer normalization per question type. Every normalizer is total: malformed
// input yields an empty or pass-through canonical form, never an error.

var (
	choiceLetterRe = regexp.MustCompile(`[A-HＡ-Ｈ]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// NormalizeChoice reduces an answer to its canonical option-letter string:
// every Latin letter A-H (full-width included) folded to half-width uppercase,
// deduplicated, sorted ascending, concatenated. "b a" and "ＡＢ" both become
// their sorted label sets, so multi-select answers compare order-insensitively.
func NormalizeChoice(raw string) string {
	matches := choiceLetterRe.FindAllString(strings.ToUpper(raw), -1)
	seen := make(map[string]bool, len(matches))
	labels := make([]string, 0, len(matches))
	for _, m := range matches {
		label := normalizeOptionLabel(m)
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return strings.Join(labels, "")
}

var (
	tfAffirm = map[string]bool{"对": true, "正确": true, "T": true, "TRUE": true, "Y": true, "YES": true, "1": true}
	tfNegate = map[string]bool{"错": true, "错误": true, "F": true, "FALSE": true, "N": true, "NO": true, "0": true}
)

// NormalizeTF maps a true/false answer onto "T" or "F". Full-width letters and
// digits fold to half-width before the vocabulary lookup, so IME input like
// "Ｔ" or "１" grades the same as its ASCII form. Tokens outside the
// vocabulary pass through unchanged so callers can display them, but they are
// never treated as valid.
func NormalizeTF(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "。", "")
	s = width.Narrow.String(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ToUpper(s)
	if tfAffirm[s] {
		return "T"
	}
	if tfNegate[s] {
		return "F"
	}
	return s
}

// NormalizeText trims and collapses internal whitespace runs to single spaces.
func NormalizeText(raw string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// CheckAnswer grades a raw user answer against the question's reference
// answer. It returns the verdict along with both canonical forms for display.
// It never fails: an unusable answer is simply incorrect.
//
// A reference that does not normalize to a valid canonical form can never be
// satisfied, which keeps malformed bank entries from producing false
// positives. Short-answer questions are never auto-graded; the verdict is
// always false and correctness is left to the test-taker's self-assessment.
func CheckAnswer(q Question, raw string) (bool, string, string) {
	switch q.Type {
	case TypeSingle:
		refNorm := NormalizeChoice(q.Answer)
		userNorm := NormalizeChoice(raw)
		return refNorm != "" && userNorm == refNorm, userNorm, refNorm
	case TypeTF:
		refNorm := NormalizeTF(q.Answer)
		userNorm := NormalizeTF(raw)
		return (refNorm == "T" || refNorm == "F") && userNorm == refNorm, userNorm, refNorm
	case TypeBlank:
		refNorm := NormalizeText(q.Answer)
		userNorm := NormalizeText(raw)
		return refNorm != "" && userNorm == refNorm, userNorm, refNorm
	case TypeShort:
		return false, NormalizeText(raw), NormalizeText(q.Answer)
	default:
		return false, NormalizeText(raw), NormalizeText(q.Answer)
	}
}
