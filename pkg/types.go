package pkg

// Status classifies the outcome of a triage turn.  ASK means the assistant
// needs more information before it can guide the user; SAFE carries
// self-care guidance; URGENT and EMERGENCY are escalations.
type Status string

const (
	StatusAsk       Status = "ASK"
	StatusSafe      Status = "SAFE"
	StatusUrgent    Status = "URGENT"
	StatusEmergency Status = "EMERGENCY"
)

// Valid reports whether s is one of the four release statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAsk, StatusSafe, StatusUrgent, StatusEmergency:
		return true
	}
	return false
}

// Disclaimer is the canonical safety phrase attached to every reply.
// Callers must never synthesize a different one.
const Disclaimer = "Educational guidance only; not a diagnosis; not for emergencies. If this is an emergency, call 112."

// DisclaimerPhrase is the snippet the self-check requires inside any
// disclaimer before a draft may be released.
const DisclaimerPhrase = "not a diagnosis"

// TurnRequest is a single user message within a conversation.
type TurnRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// TurnReply is the finalized result of one turn.  Disclaimer is always
// non-empty; Categories is non-empty only when Status is SAFE.
type TurnReply struct {
	Status     Status   `json:"status"`
	Reply      string   `json:"reply"`
	Categories []string `json:"categories"`
	NextStep   string   `json:"next_step"`
	Rationale  string   `json:"rationale"`
	Disclaimer string   `json:"disclaimer"`
}

// Draft is the mutable reply assembled during one turn, reviewed by the
// self-check arbiter before it becomes a TurnReply.
type Draft struct {
	Status     Status   `json:"status"`
	Message    string   `json:"message"`
	Categories []string `json:"categories"`
	NextStep   string   `json:"next_step"`
	Rationale  string   `json:"rationale"`
	Disclaimer string   `json:"disclaimer"`
}

// Reply converts a finalized draft into the boundary type.
func (d Draft) Reply() TurnReply {
	return TurnReply{
		Status:     d.Status,
		Reply:      d.Message,
		Categories: d.Categories,
		NextStep:   d.NextStep,
		Rationale:  d.Rationale,
		Disclaimer: d.Disclaimer,
	}
}
