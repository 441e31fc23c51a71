// Package interview grades spoken or typed civics answers against the
// accepted answers, the way an officer would in the naturalization interview.
package interview

import (
	"math"
	"strconv"
	"strings"
)

// DefaultThreshold is the keyword-match confidence counted as correct.
// It is lenient because transcripts from speech are noisy.
const DefaultThreshold = 0.35

// GradeResult is the outcome of grading one answer.
type GradeResult struct {
	IsCorrect       bool     `json:"isCorrect"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	BestMatchAnswer string   `json:"bestMatchAnswer"`
}

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90, "hundred": 100,
}

var synonyms = map[string][]string{
	"freedom":        {"liberty", "freedoms"},
	"liberty":        {"freedom", "liberties"},
	"president":      {"chief executive"},
	"law":            {"legislation", "statute", "laws"},
	"legislation":    {"law", "laws"},
	"statute":        {"law", "laws"},
	"constitution":   {"constitutional"},
	"supreme":        {"highest", "top", "ultimate"},
	"highest":        {"supreme", "top"},
	"declare":        {"declared", "announce", "announced", "proclaim", "proclaimed"},
	"declared":       {"declare", "announce", "announced"},
	"independence":   {"independent"},
	"govern":         {"governed", "governing", "rule", "ruled"},
	"governed":       {"govern", "governing"},
	"fought":         {"battled", "warred", "fight", "fighting"},
	"fight":          {"fought", "battled"},
	"equal":          {"equality", "equally"},
	"represent":      {"representation", "represents", "representing"},
	"representation": {"represent", "represents"},
	"vote":           {"voting", "votes", "voted", "elect"},
	"voting":         {"vote", "votes", "elect"},
	"elect":          {"elected", "election", "vote"},
	"elected":        {"elect", "election"},
	"election":       {"elect", "elected", "elections"},
	"citizen":        {"citizens", "citizenship"},
	"citizens":       {"citizen", "citizenship"},
	"amend":          {"amended", "amendment", "amendments"},
	"amendment":      {"amend", "amendments"},
	"amendments":     {"amend", "amendment"},
	"right":          {"rights"},
	"rights":         {"right"},
	"state":          {"states"},
	"states":         {"state"},
	"country":        {"nation"},
	"nation":         {"country"},
	"people":         {"citizens", "populace"},
	"branch":         {"branches"},
	"branches":       {"branch"},
	"power":          {"powers", "authority"},
	"powers":         {"power", "authority"},
	"tax":            {"taxes", "taxation"},
	"taxes":          {"tax", "taxation"},
	"war":            {"wars", "warfare"},
	"speech":         {"expression", "speak"},
	"religion":       {"religious", "worship"},
	"press":          {"media", "journalism"},
	"colony":         {"colonies", "colonial"},
	"colonies":       {"colony", "colonial"},
	"british":        {"britain", "england", "english"},
	"britain":        {"british", "england"},
	"slave":          {"slavery", "slaves", "enslaved"},
	"slavery":        {"slave", "slaves", "enslaved"},
	"civil":          {"civilian"},
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "in": true,
	"is": true, "was": true, "are": true, "for": true, "and": true, "or": true,
	"it": true, "he": true, "she": true, "they": true, "we": true, "that": true,
	"this": true, "its": true, "who": true, "been": true, "has": true, "had": true,
	"have": true, "do": true, "did": true, "does": true, "be": true, "but": true,
	"not": true, "with": true, "from": true, "by": true, "on": true, "at": true,
	"as": true, "think": true, "were": true, "will": true, "would": true,
	"could": true, "should": true, "can": true, "may": true, "might": true,
}

// Stem strips common English inflections: colonies→colony, governing→govern,
// stopped→stop, equally→equal, branches→branch, rights→right.
func Stem(word string) string {
	n := len(word)
	if n <= 3 {
		return word
	}
	switch {
	case strings.HasSuffix(word, "ies") && n > 4:
		return word[:n-3] + "y"
	case strings.HasSuffix(word, "ing") && n > 5:
		return undouble(word[:n-3])
	case strings.HasSuffix(word, "ed") && n > 4:
		return undouble(word[:n-2])
	case strings.HasSuffix(word, "ly") && n > 4:
		return word[:n-2]
	case strings.HasSuffix(word, "es") && n > 4:
		return word[:n-2]
	case strings.HasSuffix(word, "s") && n > 3:
		return word[:n-1]
	}
	return word
}

func undouble(base string) string {
	if n := len(base); n >= 2 && base[n-1] == base[n-2] {
		return base[:n-1]
	}
	return base
}

// Normalize lowercases text, drops everything but ASCII letters, digits and
// spaces, turns number words into digits ("one hundred" becomes "100") and
// collapses whitespace.
func Normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		w := words[i]
		if n, ok := numberWords[w]; ok && n >= 1 && n <= 9 && i+1 < len(words) && words[i+1] == "hundred" {
			out = append(out, strconv.Itoa(n*100))
			i++
			continue
		}
		if n, ok := numberWords[w]; ok {
			out = append(out, strconv.Itoa(n))
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// Keywords returns the meaningful words of answer: stop words and words of
// two characters or fewer are dropped unless numeric.
func Keywords(answer string) []string {
	normalized := Normalize(answer)
	if normalized == "" {
		return nil
	}
	var out []string
	for _, w := range strings.Split(normalized, " ") {
		if stopWords[w] {
			continue
		}
		if len(w) <= 2 && !isNumeric(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type wordSet map[string]struct{}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

func (s wordSet) addSynonyms(list []string) {
	for _, syn := range list {
		for _, w := range strings.Fields(syn) {
			s[w] = struct{}{}
			s[Stem(w)] = struct{}{}
		}
	}
}

// expand returns the keywords with their stems and known synonyms.
func expand(keywords []string) wordSet {
	set := make(wordSet, len(keywords)*4)
	for _, k := range keywords {
		set[k] = struct{}{}
		stem := Stem(k)
		set[stem] = struct{}{}
		set.addSynonyms(synonyms[k])
		set.addSynonyms(synonyms[stem])
	}
	return set
}

// matches reports whether keyword, its stem, or one of their synonyms is in
// the expanded transcript.
func (s wordSet) matches(keyword string) bool {
	stem := Stem(keyword)
	if s.has(keyword) || s.has(stem) {
		return true
	}
	for _, list := range [][]string{synonyms[keyword], synonyms[stem]} {
		for _, syn := range list {
			for _, w := range strings.Fields(syn) {
				if s.has(w) || s.has(Stem(w)) {
					return true
				}
			}
		}
	}
	return false
}

// Grade scores transcript against each expected answer and keeps the best.
// Confidence is the share of the answer's keywords found in the transcript,
// rounded to two decimals. A threshold of zero or less uses DefaultThreshold.
func Grade(transcript string, expected []string, threshold float64) GradeResult {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	res := GradeResult{
		MatchedKeywords: []string{},
		MissingKeywords: []string{},
	}
	if len(expected) > 0 {
		res.BestMatchAnswer = expected[0]
	}
	if strings.TrimSpace(transcript) == "" {
		return res
	}

	heard := expand(Keywords(transcript))
	best := 0.0
	for _, answer := range expected {
		want := Keywords(answer)
		if len(want) == 0 {
			continue
		}
		matched := []string{}
		missing := []string{}
		for _, k := range want {
			if heard.matches(k) {
				matched = append(matched, k)
			} else {
				missing = append(missing, k)
			}
		}
		conf := float64(len(matched)) / float64(len(want))
		if conf > best {
			best = conf
			res.MatchedKeywords = matched
			res.MissingKeywords = missing
			res.BestMatchAnswer = answer
		}
	}

	res.Confidence = math.Round(best*100) / 100
	res.IsCorrect = res.Confidence >= threshold
	return res
}
