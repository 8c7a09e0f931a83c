package safety

import (
	"context"
	"strings"

	"triage-assistant/pkg"
)

var forbiddenMeds = []string{
	"antibiotic", "amoxicillin", "penicillin", "ibuprofen 800", "prescription",
	"mg ", "dose of", "dosing",
}

var forbiddenDiagnostic = []string{
	"you have ", "this is definitely", "guaranteed", "diagnosis is",
}

// BlockedMessage replaces a draft that failed the medication check.
const BlockedMessage = "For safety, I can't provide medication instructions. Please see a clinician."

// RewriteMessage replaces definitive-diagnosis phrasing.
const RewriteMessage = "Based on what you shared, this can be due to several common causes."

// RuleReviewer is the deterministic tier of the self-check.  It never
// returns an error.
type RuleReviewer struct{}

// NewRuleReviewer returns the rule tier.
func NewRuleReviewer() *RuleReviewer { return &RuleReviewer{} }

// Review checks the draft's released text: medication or dosing content
// blocks, definitive-diagnosis wording rewrites, a disclaimer without the
// required phrase rewrites with reason missing_disclaimer, otherwise
// approve.
func (r *RuleReviewer) Review(_ context.Context, draft pkg.Draft) (Verdict, error) {
	text := strings.ToLower(draft.Message + " " + draft.NextStep + " " + draft.Disclaimer)

	for _, kw := range forbiddenMeds {
		if strings.Contains(text, kw) {
			return Verdict{Action: ActionBlock, Reason: "meds", Text: BlockedMessage}, nil
		}
	}
	for _, kw := range forbiddenDiagnostic {
		if strings.Contains(text, kw) {
			return Verdict{Action: ActionRewrite, Reason: "diagnostic_claim", Text: RewriteMessage}, nil
		}
	}
	if !strings.Contains(strings.ToLower(draft.Disclaimer), pkg.DisclaimerPhrase) {
		return Verdict{Action: ActionRewrite, Reason: "missing_disclaimer"}, nil
	}
	return Verdict{Action: ActionApprove}, nil
}
