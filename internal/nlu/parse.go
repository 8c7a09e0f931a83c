// Package nlu derives structured signals (age, severity, duration,
// pregnancy, entities) from free text.  The parse functions here are shared
// by the session store (session-level slots) and the extractor
// (sentence-level signals) so both sides agree on the same grammar.
package nlu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var ageRe = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(y(?:rs?|ears?)|yo|m(?:o|onths?))\b`)

// ParseAge returns the leading number of an age mention such as "35 years",
// "35yo" or "2 months".  The raw count is kept regardless of unit so that
// infant mentions ("2 month old") stay below the under-3 red-flag threshold.
func ParseAge(text string) (int, bool) {
	m := ageRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// severityCanon maps severity words and common synonyms to canonical values.
var severityCanon = map[string]string{
	"mild":    "mild",
	"light":   "mild",
	"not bad": "mild",
	"okayish": "mild",

	"moderate": "moderate",
	"medium":   "moderate",
	"so-so":    "moderate",

	"severe":  "severe",
	"strong":  "severe",
	"intense": "severe",

	"worst":       "worst",
	"very severe": "worst",
}

// severityRe matches any canon key as a whole word, longest key first so
// "very severe" is not captured as "severe".
var severityRe = func() *regexp.Regexp {
	keys := make([]string, 0, len(severityCanon))
	for k := range severityCanon {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for i, k := range keys {
		keys[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(keys, "|") + `)\b`)
}()

// ParseSeverity returns the canonical severity ("mild", "moderate",
// "severe", "worst") mentioned in text, or "" if none.
func ParseSeverity(text string) string {
	m := severityRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return severityCanon[strings.ToLower(m[1])]
}

var (
	durHoursRe       = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(hours?|hrs?|h)\b`)
	durDaysRe        = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(days?|d)\b`)
	durWeeksRe       = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(weeks?|wks?|w)\b`)
	sinceYesterdayRe = regexp.MustCompile(`(?i)\bsince\s+yesterday\b`)
	todayRe          = regexp.MustCompile(`(?i)\b(today|for a few hours)\b`)
	fewDaysRe        = regexp.MustCompile(`(?i)\b(a\s*few\s*days|couple of days)\b`)
)

// ParseDurationDays parses a symptom duration into fractional days.  The
// cascade is ordered; the first matching rule wins: explicit hours, days and
// weeks, then the idioms "since yesterday" (1.0), "today"/"for a few hours"
// (0.5) and "a few days"/"couple of days" (3.0).
func ParseDurationDays(text string) (float64, bool) {
	t := strings.ToLower(text)
	if m := durHoursRe.FindStringSubmatch(t); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v / 24.0, true
	}
	if m := durDaysRe.FindStringSubmatch(t); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v, true
	}
	if m := durWeeksRe.FindStringSubmatch(t); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v * 7.0, true
	}
	if sinceYesterdayRe.MatchString(t) {
		return 1.0, true
	}
	if todayRe.MatchString(t) {
		return 0.5, true
	}
	if fewDaysRe.MatchString(t) {
		return 3.0, true
	}
	return 0, false
}

var pregnancyRe = regexp.MustCompile(`(?i)\bpregnan\w*\b`)

// ParsePregnant reports whether text mentions pregnancy.
func ParsePregnant(text string) bool {
	return pregnancyRe.MatchString(text)
}

// SymptomWords is the keyword set that marks a turn as symptom-bearing.
var SymptomWords = []string{
	"cough", "fever", "sore throat", "headache", "abdominal", "stomach",
	"vomit", "diarrhea", "rash", "ear pain", "urination", "back pain",
	"shortness of breath", "chest pain", "dizzy", "nausea", "pain",
}

// HasSymptom reports whether text contains any known symptom keyword.
func HasSymptom(text string) bool {
	t := strings.ToLower(text)
	for _, w := range SymptomWords {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}
