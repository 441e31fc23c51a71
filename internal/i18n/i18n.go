// Package i18n holds the bilingual text type and Burmese numeral formatting.
package i18n

import (
	"strconv"
	"strings"
)

// Bilingual is a piece of text in English and Burmese.
type Bilingual struct {
	EN string `json:"en"`
	MY string `json:"my"`
}

// String returns both languages joined with a slash, the form used in
// notification titles.
func (b Bilingual) String() string {
	if b.MY == "" || b.MY == b.EN {
		return b.EN
	}
	return b.EN + " / " + b.MY
}

var burmeseDigits = [10]rune{'၀', '၁', '၂', '၃', '၄', '၅', '၆', '၇', '၈', '၉'}

// BurmeseNumber formats n using Burmese numerals.
func BurmeseNumber(n int) string {
	return ToBurmeseDigits(strconv.Itoa(n))
}

// ToBurmeseDigits replaces every ASCII digit in s with its Burmese numeral.
func ToBurmeseDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(burmeseDigits[r-'0'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
