// Package safety reviews a draft reply before release.  The rule tier is
// always available and never fails; the optional LLM tier is composed in
// front of it with a fallback combinator, so the system always produces a
// verdict.
package safety

import (
	"context"

	"triage-assistant/pkg"
)

// Action is the arbiter's decision on a draft.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionRewrite Action = "REWRITE"
	ActionBlock   Action = "BLOCK"
)

// Verdict is the outcome of a review.  Text carries the replacement message
// for REWRITE and BLOCK; Reason is a short code.
type Verdict struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
	Text   string `json:"text"`
}

// Reviewer reviews a draft reply.
type Reviewer interface {
	Review(ctx context.Context, draft pkg.Draft) (Verdict, error)
}
