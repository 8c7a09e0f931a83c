package triage

import (
	"testing"

	"triage-assistant/internal/nlu"
	"triage-assistant/internal/policy"
	"triage-assistant/pkg"
)

func TestComposeEscalation_Templates(t *testing.T) {
	tests := []struct {
		rationale string
		tier      policy.Tier
		status    pkg.Status
		message   string
		nextStep  string
	}{
		{"infant_fever", policy.TierEmergency, pkg.StatusEmergency,
			"Fever in an infant under 3 months is an emergency.",
			"Call 112 / go to the emergency department now."},
		{"uti_systemic", policy.TierUrgent, pkg.StatusUrgent,
			"Urinary symptoms with fever or back pain may indicate kidney involvement.",
			"Seek urgent care or same-day GP evaluation."},
		{"cardiorespiratory_red_flag", policy.TierEmergency, pkg.StatusEmergency,
			"Chest pain with shortness of breath can be an emergency.",
			"Call 112 / go to the emergency department now."},
	}
	for _, tt := range tests {
		t.Run(tt.rationale, func(t *testing.T) {
			d := composeEscalation(policy.Verdict{Tier: tt.tier, Rationale: tt.rationale})
			if d.Status != tt.status {
				t.Errorf("status = %s, want %s", d.Status, tt.status)
			}
			if d.Message != tt.message {
				t.Errorf("message = %q, want %q", d.Message, tt.message)
			}
			if d.NextStep != tt.nextStep {
				t.Errorf("next step = %q, want %q", d.NextStep, tt.nextStep)
			}
			if d.Rationale != tt.rationale {
				t.Errorf("rationale = %q, want %q", d.Rationale, tt.rationale)
			}
		})
	}
}

func TestComposeEscalation_UnknownRationaleFallsBack(t *testing.T) {
	d := composeEscalation(policy.Verdict{Tier: policy.TierEmergency, Rationale: "red_flag_keyword"})
	if d.Status != pkg.StatusEmergency || d.Message != "This may be an emergency." {
		t.Errorf("got %+v", d)
	}
	d = composeEscalation(policy.Verdict{Tier: policy.TierUrgent, Rationale: "urgent_keyword"})
	if d.Status != pkg.StatusUrgent || d.NextStep != "Seek urgent care or same-day GP evaluation." {
		t.Errorf("got %+v", d)
	}
}

func TestSafeNextStep(t *testing.T) {
	days := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		text string
		ext  nlu.ExtractionResult
		want string
	}{
		{"severe", "severe cough", nlu.ExtractionResult{}, "Seek urgent care within 24 hours."},
		{"worst", "very severe pain", nlu.ExtractionResult{}, "Seek urgent care within 24 hours."},
		{"moderate", "moderate headache", nlu.ExtractionResult{}, "Arrange a GP/primary care appointment in the next 24-48 hours."},
		{"mild short", "mild cough", nlu.ExtractionResult{DurationDays: days(2)}, "Self-care and monitoring are reasonable; recheck if not improving."},
		{"mild long", "mild cough", nlu.ExtractionResult{DurationDays: days(10)}, "Arrange a GP/primary care appointment."},
		{"no severity no duration", "cough", nlu.ExtractionResult{}, "Arrange a GP/primary care appointment."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safeNextStep(tt.text, tt.ext); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeSafe_ToneVariants(t *testing.T) {
	d := composeSafe("burning when peeing for 2 days, mild", nlu.ExtractionResult{}, nil)
	if d.Message != "Your urinary symptoms can often be monitored initially if mild and short-lived." {
		t.Errorf("urinary tone: got %q", d.Message)
	}
	d = composeSafe("mild sore throat since yesterday", nlu.ExtractionResult{}, nil)
	if d.Message != "Upper-respiratory symptoms are commonly mild and self-limited if no red flags." {
		t.Errorf("respiratory tone: got %q", d.Message)
	}
	d = composeSafe("mild back pain", nlu.ExtractionResult{}, []string{"musculoskeletal"})
	if d.Message != "Based on what you shared, this sounds suitable for initial self-care and monitoring." {
		t.Errorf("default tone: got %q", d.Message)
	}
	if d.Status != pkg.StatusSafe || d.Rationale != "safe_guidance" {
		t.Errorf("got %+v", d)
	}
	if len(d.Categories) != 1 || d.Categories[0] != "musculoskeletal" {
		t.Errorf("categories = %v", d.Categories)
	}
}
