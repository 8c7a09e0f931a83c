package nlu

import (
	"context"
	"strings"
)

// negators are words that negate the clause that follows them.
var negators = map[string]bool{
	"no":      true,
	"not":     true,
	"without": true,
	"denies":  true,
	"denied":  true,
	"deny":    true,
	"never":   true,
}

// symptomLexicon maps surface phrases to entity types for the rule-based
// tagger.  Longer phrases are matched before their substrings.
var symptomLexicon = map[string]string{
	"shortness of breath": "SYMPTOM",
	"trouble breathing":   "SYMPTOM",
	"chest pain":          "SYMPTOM",
	"sore throat":         "SYMPTOM",
	"stiff neck":          "SYMPTOM",
	"back pain":           "SYMPTOM",
	"abdominal pain":      "SYMPTOM",
	"fever":               "SYMPTOM",
	"temperature":         "SYMPTOM",
	"cough":               "SYMPTOM",
	"headache":            "SYMPTOM",
	"rash":                "SYMPTOM",
	"hives":               "SYMPTOM",
	"vomiting":            "SYMPTOM",
	"diarrhea":            "SYMPTOM",
	"bleeding":            "SYMPTOM",
	"seizure":             "SYMPTOM",
	"dizziness":           "SYMPTOM",
	"nausea":              "SYMPTOM",
	"burning urination":   "SYMPTOM",
	"painful urination":   "SYMPTOM",
	"dysuria":             "SYMPTOM",
}

// LexiconTagger is a dependency-free EntityTagger: it scans for known
// symptom phrases and applies a clause-scoped negation check, standing in
// for an external sequence-labelling model.
type LexiconTagger struct{}

// NewLexiconTagger returns the rule-based tagger.
func NewLexiconTagger() *LexiconTagger { return &LexiconTagger{} }

// Tag labels every lexicon phrase occurring in text.  A mention is negated
// when a negator appears shortly before it within the same clause.
// Lowercasing is byte-preserving so match offsets stay valid in text even
// when it contains multi-byte runes.
func (t *LexiconTagger) Tag(_ context.Context, text string) ([]Entity, error) {
	lower := asciiLower(text)
	var ents []Entity
	for phrase, typ := range symptomLexicon {
		for _, start := range phraseIndexes(lower, phrase) {
			ents = append(ents, Entity{
				Type:    typ,
				Text:    text[start : start+len(phrase)],
				Negated: NegatedAt(lower, start),
				Start:   start,
				End:     start + len(phrase),
			})
		}
	}
	// Stable order by offset, then longest span first for identical starts.
	sortEntities(ents)
	return dropShadowed(ents), nil
}

// phraseIndexes returns the start offsets where phrase occurs in text as a
// whole word or phrase.
func phraseIndexes(text, phrase string) []int {
	var out []int
	for from := 0; ; {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return out
		}
		start := from + i
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			out = append(out, start)
		}
		from = start + 1
	}
}

func boundaryBefore(text string, i int) bool {
	return i == 0 || !isWordByte(text[i-1])
}

func boundaryAfter(text string, i int) bool {
	return i >= len(text) || !isWordByte(text[i])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// asciiLower lowercases only the ASCII letters, leaving every other byte,
// multi-byte runes included, exactly in place.  The lexicon and negators are
// ASCII, and keeping the byte layout means offsets into the lowered string
// index the original text too.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for ; i < len(b); i++ {
				if c := b[i]; c >= 'A' && c <= 'Z' {
					b[i] = c + 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// negationWindow is how many tokens before a mention a negator still
// governs it.
const negationWindow = 3

// NegatedAt reports whether the clause containing offset is negated: a
// negator within negationWindow tokens before the offset, with no clause
// boundary (.,;!?) in between.
func NegatedAt(lower string, offset int) bool {
	clauseStart := 0
	for i := offset - 1; i >= 0; i-- {
		if c := lower[i]; c == '.' || c == ',' || c == ';' || c == '!' || c == '?' {
			clauseStart = i + 1
			break
		}
	}
	tokens := strings.Fields(lower[clauseStart:offset])
	if len(tokens) > negationWindow {
		tokens = tokens[len(tokens)-negationWindow:]
	}
	for _, tok := range tokens {
		if negators[strings.Trim(tok, "\"'()")] {
			return true
		}
	}
	return false
}

func sortEntities(ents []Entity) {
	for i := 1; i < len(ents); i++ {
		for j := i; j > 0; j-- {
			a, b := ents[j-1], ents[j]
			if a.Start < b.Start || (a.Start == b.Start && a.End >= b.End) {
				break
			}
			ents[j-1], ents[j] = b, a
		}
	}
}

// dropShadowed removes mentions fully contained in an earlier, longer span
// ("pain" inside "chest pain").
func dropShadowed(ents []Entity) []Entity {
	out := ents[:0]
	lastEnd := -1
	for _, e := range ents {
		if e.Start < lastEnd && e.End <= lastEnd {
			continue
		}
		out = append(out, e)
		if e.End > lastEnd {
			lastEnd = e.End
		}
	}
	return out
}
