// Package namematch compares OCR-sensed labels with expected item names.
package namematch

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the minimal similarity at which a sensed label is
// accepted as the expected item.
const DefaultThreshold = 92.0

//nolint:gochecknoglobals
var folder = cases.Fold()

// Normalize folds case, applies NFKC and drops all whitespace, so multi-line
// OCR output compares equal to its single-line form.
func Normalize(s string) string {
	s = folder.String(norm.NFKC.String(s))

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Similarity returns the normalized indel similarity of a and b in percent:
// 100 * 2*LCS / (len(a)+len(b)), computed over normalized runes.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)

	total := utf8.RuneCountInString(na) + utf8.RuneCountInString(nb)
	if total == 0 {
		return 100
	}

	return 100 * float64(2*edlib.LCS(na, nb)) / float64(total)
}

// Matcher accepts labels whose similarity reaches Threshold.
type Matcher struct {
	Threshold float64
}

func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// Match reports the similarity and whether it passes the threshold.
func (m Matcher) Match(sensed, expected string) (float64, bool) {
	score := Similarity(sensed, expected)
	return score, score >= m.Threshold
}
