// Package dialogue decides whether enough slots are known to proceed to
// retrieval, and which follow-up question to ask otherwise.
package dialogue

// State names the gate's position for one call.
type State string

const (
	StateNeedSymptom  State = "NEED_SYMPTOM"
	StateNeedDuration State = "NEED_DURATION"
	StateNeedAge      State = "NEED_AGE"
	StateNeedSeverity State = "NEED_SEVERITY"
	StateReady        State = "READY"
)

// Flags are the slot-presence booleans computed by the caller each turn.
// The gate itself is stateless: identical flags always produce the same
// question, so slots are satisfied in the fixed order
// symptom -> duration -> age -> severity across turns.
type Flags struct {
	HasSymptom      bool
	HasDuration     bool
	HasAge          bool
	HasSeverity     bool
	TextHasSeverity bool // explicit severity word in the current turn
}

const (
	questionSymptom  = "Can you describe your main symptom for me (e.g., cough, fever, pain)?"
	questionDuration = "How long has this been going on (e.g., hours, days, weeks)?"
	questionAge      = "How old are you?"
	questionSeverity = "How severe is it (mild, moderate, or severe)?"
)

// Next returns the gate state and, unless READY, the follow-up question to
// ask verbatim.
func Next(f Flags) (State, string) {
	if !f.HasSymptom {
		return StateNeedSymptom, questionSymptom
	}
	if !f.HasDuration {
		return StateNeedDuration, questionDuration
	}
	if !f.HasAge {
		return StateNeedAge, questionAge
	}
	if !f.HasSeverity && !f.TextHasSeverity {
		return StateNeedSeverity, questionSeverity
	}
	return StateReady, ""
}
