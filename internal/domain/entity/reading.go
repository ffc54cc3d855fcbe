package entity

import (
	"strconv"
	"strings"
	"unicode"
)

// PriceReading is a sensed integer. Zero and unparsable text are invalid,
// never "free".
type PriceReading struct {
	Value int64
	Valid bool
}

func NewPriceReading(value int64) PriceReading {
	return PriceReading{Value: value, Valid: value > 0}
}

// ParsePriceReading keeps the digits of OCR text ("1 250", "1,250" and "1.250"
// all read as 1250).
func ParsePriceReading(text string) PriceReading {
	var sb strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return PriceReading{}
	}

	v, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return PriceReading{}
	}
	return NewPriceReading(v)
}

// TextFragment is one OCR candidate with its engine confidence (0-100).
type TextFragment struct {
	Text       string
	Confidence float64
}

// MostConfident returns the highest-confidence fragment; the earlier one wins
// ties.
func MostConfident(fragments []TextFragment) (TextFragment, bool) {
	if len(fragments) == 0 {
		return TextFragment{}, false
	}

	best := fragments[0]
	for _, f := range fragments[1:] {
		if f.Confidence > best.Confidence {
			best = f
		}
	}
	return best, true
}
