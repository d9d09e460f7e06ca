package adjudication

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	pstrings "adjudicator/pkg/platform/strings"
)

var honorifics = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "miss": {}, "dr": {}, "shri": {}, "sri": {}, "smt": {},
}

// NameScore returns how closely two personal names agree, in [0,100].
// Comparison ignores case, punctuation, diacritics, honorifics and token
// order; single-letter initials count as the name they abbreviate.
func NameScore(a, b string) float64 {
	ta, tb := nameTokens(a), nameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	ta = expandInitials(ta, tb)
	tb = expandInitials(tb, ta)

	score := similarity(sortedJoin(ta), sortedJoin(tb))
	if isSubset(ta, tb) || isSubset(tb, ta) {
		score = 100
	}
	return roundTo(score, 2)
}

func nameTokens(s string) []string {
	raw := pstrings.Tokens(s)
	out := raw[:0:0]
	for _, t := range raw {
		if _, ok := honorifics[t]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// expandInitials replaces one-letter tokens of names with an unused token of
// ref starting with the same letter.
func expandInitials(names, ref []string) []string {
	used := make(map[int]bool, len(ref))
	for _, n := range names {
		for i, r := range ref {
			if !used[i] && r == n {
				used[i] = true
				break
			}
		}
	}

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n
		if utf8.RuneCountInString(n) != 1 {
			continue
		}
		for j, r := range ref {
			if !used[j] && len(r) > len(n) && strings.HasPrefix(r, n) {
				used[j] = true
				out[i] = r
				break
			}
		}
	}
	return out
}

// isSubset reports whether every token of small (two or more) appears in big,
// which covers an omitted middle name.
func isSubset(small, big []string) bool {
	if len(small) < 2 || len(small) >= len(big) {
		return false
	}
	have := make(map[string]int, len(big))
	for _, t := range big {
		have[t]++
	}
	for _, t := range small {
		if have[t] == 0 {
			return false
		}
		have[t]--
	}
	return true
}

func sortedJoin(tokens []string) string {
	s := append([]string(nil), tokens...)
	sort.Strings(s)
	return strings.Join(s, " ")
}

// similarity is the matching-blocks ratio 2·M/T over runes. A dropped or
// extra letter costs one rune rather than a substitution, so "jon" vs
// "john" stays above the pass score.
func similarity(a, b string) float64 {
	ra, rb := runeSeq(a), runeSeq(b)
	if len(ra)+len(rb) == 0 {
		return 100
	}
	return 100 * difflib.NewMatcher(ra, rb).Ratio()
}

func runeSeq(s string) []string {
	out := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func verifyIdentity(ev *evaluation) StageResult {
	claimed := ev.claimedName()
	if len(nameTokens(claimed)) == 0 {
		return StageResult{
			Stage:  StageIdentity,
			Status: StatusPartial,
			Findings: []Finding{newFinding(StageIdentity, SeverityWarning, CodeNameNotProvided, 0,
				"claimant name not provided on any document")},
		}
	}
	return identityResult(ev.cfg, NameScore(claimed, ev.member.Name), claimed, ev.member.Name)
}

// identityResult maps a name score onto the stage outcome.
func identityResult(cfg Config, score float64, claimed, policyName string) StageResult {
	res := StageResult{Stage: StageIdentity, Score: score, Findings: []Finding{}}
	switch {
	case score >= cfg.Identity.PassScore:
		res.Status = StatusPass
	case score >= cfg.Identity.ReviewScore:
		res.Status = StatusPartial
		res.Findings = append(res.Findings, newFinding(StageIdentity, SeverityWarning, CodeNamePartialMatch, score,
			"name %q only partially matches policy holder %q (%.1f%%)", claimed, policyName, score))
	default:
		res.Status = StatusFail
		res.Findings = append(res.Findings, newFinding(StageIdentity, SeverityError, CodeNameMismatch, score,
			"name %q does not match policy holder %q (%.1f%%)", claimed, policyName, score))
	}
	return res
}
