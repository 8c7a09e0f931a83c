package nlu

import (
	"math"
	"testing"
)

func TestParseDurationDays(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"Fever for 48 hours", 2.0, true},
		{"Headache for 3 days", 3.0, true},
		{"Cough for 2 weeks", 14.0, true},
		{"Since yesterday sore throat", 1.0, true},
		{"Today I have a cough", 0.5, true},
		{"A few days of congestion", 3.0, true},
		{"couple of days nausea", 3.0, true},
		{"12h of fever", 0.5, true},
		{"1 hr of dizziness", 1.0 / 24.0, true},
		{"5d of pain", 5.0, true},
		{"1 wk of cough", 7.0, true},
		{"no duration mentioned", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseDurationDays(tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseDurationDays(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseDurationDays(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseDurationDays_HoursWinOverDays(t *testing.T) {
	// The cascade is ordered; hours are checked before days.
	got, ok := ParseDurationDays("12 hours, maybe 2 days")
	if !ok || got != 0.5 {
		t.Errorf("got (%v, %v), want (0.5, true)", got, ok)
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"it is mild", "mild"},
		{"a light cough", "mild"},
		{"honestly not bad", "mild"},
		{"feeling okayish", "mild"},
		{"moderate pain", "moderate"},
		{"a medium headache", "moderate"},
		{"it's so-so", "moderate"},
		{"severe pain", "severe"},
		{"a strong headache", "severe"},
		{"intense cramping", "severe"},
		{"the worst headache of my life", "worst"},
		{"very severe pain", "worst"},
		{"SEVERE pain", "severe"},
		{"no severity here", ""},
	}
	for _, tt := range tests {
		if got := ParseSeverity(tt.text); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"I am 35 years old", 35, true},
		{"35yo male", 35, true},
		{"I'm 27 yrs old", 27, true},
		{"my 2 month old has a fever", 2, true},
		{"she is 6 months", 6, true},
		{"no age here", 0, false},
		{"route 66 ahead", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAge(tt.text)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseAge(%q) = (%d, %v), want (%d, %v)", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePregnant(t *testing.T) {
	if !ParsePregnant("I am pregnant and have pain") {
		t.Error("expected pregnancy mention to be detected")
	}
	if !ParsePregnant("my pregnancy is at 30 weeks") {
		t.Error("expected 'pregnancy' to be detected")
	}
	if ParsePregnant("just a cough") {
		t.Error("did not expect a pregnancy mention")
	}
}

func TestHasSymptom(t *testing.T) {
	if !HasSymptom("I have a Sore Throat") {
		t.Error("expected symptom keyword match")
	}
	if HasSymptom("hello there") {
		t.Error("did not expect symptom keyword match")
	}
}
