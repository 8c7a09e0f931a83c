// Package triage wires the per-turn pipeline: slot merge, extraction,
// red-flag policy, dialogue gate, retrieval, draft composition and the
// safety self-check.
package triage

import (
	"strings"

	"triage-assistant/internal/nlu"
	"triage-assistant/internal/policy"
	"triage-assistant/pkg"
)

const (
	emergencyNextStep = "Call 112 / go to the emergency department now."
	urgentNextStep    = "Seek urgent care or same-day GP evaluation."
)

// escalationTemplate is the fixed wording for a rule-group rationale code.
type escalationTemplate struct {
	message  string
	nextStep string
}

var escalationTemplates = map[string]escalationTemplate{
	"cardiorespiratory_red_flag": {"Chest pain with shortness of breath can be an emergency.", emergencyNextStep},
	"neuro_headache_red_flag":    {"A sudden severe (worst) headache can be an emergency.", emergencyNextStep},
	"neuro_meningism_red_flag":   {"Fever with a stiff neck can be an emergency.", emergencyNextStep},
	"neuro_focal_red_flag":       {"Sudden confusion, weakness, speech or vision changes can be an emergency.", emergencyNextStep},
	"anaphylaxis":                {"Possible severe allergic reaction.", emergencyNextStep},
	"pregnancy_red_flag":         {"Bleeding or severe abdominal pain in pregnancy needs emergency assessment.", emergencyNextStep},
	"infant_fever":               {"Fever in an infant under 3 months is an emergency.", emergencyNextStep},
	"overdose_poisoning":         {"A possible overdose or poisoning is an emergency.", emergencyNextStep},
	"head_trauma":                {"A head injury with loss of consciousness or vomiting needs emergency assessment.", emergencyNextStep},
	"self_harm":                  {"Thoughts of self-harm deserve immediate support.", emergencyNextStep},
	"uti_systemic":               {"Urinary symptoms with fever or back pain may indicate kidney involvement.", urgentNextStep},
}

// composeEscalation turns a red-flag verdict into a fixed-template draft.
func composeEscalation(v policy.Verdict) pkg.Draft {
	status := pkg.StatusEmergency
	tmpl := escalationTemplate{"This may be an emergency.", emergencyNextStep}
	if v.Tier == policy.TierUrgent {
		status = pkg.StatusUrgent
		tmpl = escalationTemplate{"These symptoms need prompt medical review.", urgentNextStep}
	}
	if t, ok := escalationTemplates[v.Rationale]; ok {
		tmpl = t
	}
	return pkg.Draft{
		Status:    status,
		Message:   tmpl.message,
		NextStep:  tmpl.nextStep,
		Rationale: v.Rationale,
	}
}

// composeAsk carries the gate's question verbatim.
func composeAsk(question string) pkg.Draft {
	return pkg.Draft{
		Status:    pkg.StatusAsk,
		Message:   question,
		Rationale: "missing_required_slots",
	}
}

// composeSafe builds the non-diagnostic guidance draft, with light tone
// variants for urinary and upper-respiratory complaints.
func composeSafe(text string, ext nlu.ExtractionResult, categories []string) pkg.Draft {
	t := strings.ToLower(text)
	msg := "Based on what you shared, this sounds suitable for initial self-care and monitoring."
	switch {
	case containsAny(t, "urination", "peeing", "dysuria", "burning when peeing"):
		msg = "Your urinary symptoms can often be monitored initially if mild and short-lived."
	case containsAny(t, "cough", "sore throat", "cold", "upper respiratory"):
		msg = "Upper-respiratory symptoms are commonly mild and self-limited if no red flags."
	}
	return pkg.Draft{
		Status:     pkg.StatusSafe,
		Message:    msg,
		Categories: categories,
		NextStep:   safeNextStep(t, ext),
		Rationale:  "safe_guidance",
	}
}

// safeNextStep routes by severity first, then duration: severe within 24h,
// moderate within 24-48h, short mild courses to self-care, anything else to
// a routine appointment.
func safeNextStep(lower string, ext nlu.ExtractionResult) string {
	switch nlu.ParseSeverity(lower) {
	case "severe", "worst":
		return "Seek urgent care within 24 hours."
	case "moderate":
		return "Arrange a GP/primary care appointment in the next 24-48 hours."
	}
	if ext.DurationDays != nil && *ext.DurationDays <= 3 {
		return "Self-care and monitoring are reasonable; recheck if not improving."
	}
	return "Arrange a GP/primary care appointment."
}

func containsAny(t string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}
