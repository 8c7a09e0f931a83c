// Package policy implements the red-flag escalation rules.  Rule groups are
// evaluated in a fixed priority order and the first match wins; overlapping
// phrases (e.g. "fever" in both the infant and UTI groups) must resolve to
// the more severe tier, so the order is a safety contract and must not be
// changed.
package policy

import (
	"strings"

	"triage-assistant/internal/nlu"
)

// Tier is the escalation level of a matched rule group.
type Tier string

const (
	TierEmergency Tier = "EMERGENCY"
	TierUrgent    Tier = "URGENT"
)

// Verdict reports a matched rule group.  Rationale is a short code the
// composer maps to a fixed message template.
type Verdict struct {
	Tier      Tier
	Rationale string
}

var (
	chestPainPhrases = []string{
		"chest pain", "pressure in chest", "chest pressure", "crushing chest",
		"chest tightness", "tightness in chest",
	}
	breathlessPhrases = []string{
		"shortness of breath", "short of breath", "trouble breathing",
		"difficulty breathing", "can't breathe", "cant breathe",
		"cannot breathe", "breathless", "sob",
	}
	thunderclapPhrases = []string{
		"worst headache", "thunderclap", "sudden severe headache",
	}
	feverPhrases = []string{"fever", "temperature", "febrile", "high temp"}
	neuroFocalPhrases = []string{
		"confusion", "confused", "slurred speech", "weakness one side",
		"one-sided weakness", "one sided weakness", "numbness one side",
		"one-sided numbness", "face droop", "facial droop", "vision loss",
		"loss of vision", "seizure", "convulsion",
	}
	angioedemaPhrases = []string{
		"swollen tongue", "tongue swelling", "swollen lips", "lip swelling",
		"throat swelling", "throat closing",
	}
	pregnancyDangerPhrases = []string{
		"severe abdominal pain", "heavy bleeding", "vaginal bleeding", "bleeding",
	}
	overdosePhrases = []string{
		"overdose", "overdosed", "took too many pills", "too many pills",
		"poisoning", "poisoned", "swallowed poison",
	}
	headTraumaPhrases = []string{
		"hit my head", "head injury", "head trauma", "fell", "fell down",
	}
	locVomitPhrases = []string{
		"passed out", "blacked out", "lost consciousness",
		"loss of consciousness", "unconscious", "knocked out",
		"vomit", "vomited", "vomiting", "threw up",
	}
	selfHarmPhrases = []string{
		"suicidal", "suicide", "kill myself", "end my life", "hurt myself",
		"self-harm", "self harm",
	}
	urinaryPhrases = []string{
		"burning urination", "painful urination", "dysuria",
		"burning when peeing", "urination", "urine", "peeing", "burning",
	}
	urinarySystemicPhrases = []string{
		"fever", "back pain", "flank pain", "flank",
	}

	// Flat fallback sets for terms not caught by the combo groups above.
	emergencyKeywords = []string{
		"chest pain", "pressure in chest", "shortness of breath",
		"can't breathe", "cant breathe", "severe bleeding", "fainted",
		"pass out", "stroke", "weakness one side", "numbness one side",
		"seizure", "anaphylaxis", "swollen tongue", "suicidal", "suicide",
	}
	urgentKeywords = []string{
		"stiff neck", "worst headache", "pregnant bleeding", "flank pain",
		"blood in urine", "cannot keep fluids",
	}
)

// Engine evaluates the ordered rule groups.
type Engine struct{}

// NewEngine returns the red-flag engine.
func NewEngine() *Engine { return &Engine{} }

// Evaluate runs the rule groups in priority order against the effective
// text and extraction signals.  It returns nil when no group matches and
// the dialogue gate should proceed.
func (e *Engine) Evaluate(text string, ext nlu.ExtractionResult) *Verdict {
	t := strings.ToLower(text)

	// 1. Cardio-respiratory combo.
	if anyPresent(t, chestPainPhrases) && anyPresent(t, breathlessPhrases) {
		return &Verdict{TierEmergency, "cardiorespiratory_red_flag"}
	}

	// 2. Neurological.
	if anyPresent(t, thunderclapPhrases) {
		return &Verdict{TierEmergency, "neuro_headache_red_flag"}
	}
	if anyPresent(t, feverPhrases) && Present(t, "stiff neck") {
		return &Verdict{TierEmergency, "neuro_meningism_red_flag"}
	}
	if anyPresent(t, neuroFocalPhrases) {
		return &Verdict{TierEmergency, "neuro_focal_red_flag"}
	}

	// 3. Anaphylaxis.
	if anyPresent(t, angioedemaPhrases) {
		return &Verdict{TierEmergency, "anaphylaxis"}
	}
	if Present(t, "hives") && anyPresent(t, breathlessPhrases) {
		return &Verdict{TierEmergency, "anaphylaxis"}
	}

	// 4. Pregnancy danger signs.
	if ext.Pregnant && anyPresent(t, pregnancyDangerPhrases) {
		return &Verdict{TierEmergency, "pregnancy_red_flag"}
	}

	// 5. Infant fever (age parsed below the under-3 threshold).
	if ext.Age != nil && *ext.Age < 3 && anyPresent(t, feverPhrases) {
		return &Verdict{TierEmergency, "infant_fever"}
	}

	// 6. Overdose / poisoning.
	if anyPresent(t, overdosePhrases) {
		return &Verdict{TierEmergency, "overdose_poisoning"}
	}

	// 7. Head trauma with loss of consciousness or vomiting.
	if anyPresent(t, headTraumaPhrases) && anyPresent(t, locVomitPhrases) {
		return &Verdict{TierEmergency, "head_trauma"}
	}

	// 8. Self-harm / suicidality.
	if anyPresent(t, selfHarmPhrases) {
		return &Verdict{TierEmergency, "self_harm"}
	}

	// 9. Dysuria with systemic signs.
	if anyPresent(t, urinaryPhrases) && anyPresent(t, urinarySystemicPhrases) {
		return &Verdict{TierUrgent, "uti_systemic"}
	}

	// 10. Flat fallbacks.
	if anyPresent(t, emergencyKeywords) {
		return &Verdict{TierEmergency, "red_flag_keyword"}
	}
	if anyPresent(t, urgentKeywords) {
		return &Verdict{TierUrgent, "urgent_keyword"}
	}

	return nil
}

func anyPresent(lower string, phrases []string) bool {
	for _, p := range phrases {
		if Present(lower, p) {
			return true
		}
	}
	return false
}

// Present reports whether phrase occurs in lower as a whole word or phrase
// and is not negated within its clause ("no chest pain" does not count as a
// chest-pain mention).  lower must already be lowercased.
func Present(lower, phrase string) bool {
	for from := 0; ; {
		i := strings.Index(lower[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		if wordBoundary(lower, start, end) && !nlu.NegatedAt(lower, start) {
			return true
		}
		from = start + 1
	}
}

func wordBoundary(s string, start, end int) bool {
	if start > 0 && isWord(s[start-1]) {
		return false
	}
	if end < len(s) && isWord(s[end]) {
		return false
	}
	return true
}

func isWord(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
