package triage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"triage-assistant/internal/nlu"
	"triage-assistant/internal/policy"
	"triage-assistant/internal/retrieval"
	"triage-assistant/internal/safety"
	"triage-assistant/internal/session"
	"triage-assistant/pkg"
)

// anyHitStore returns the same candidates for every query.
type anyHitStore struct {
	hits []retrieval.Candidate
}

func (s *anyHitStore) Query(context.Context, string, int) ([]retrieval.Candidate, error) {
	return s.hits, nil
}

func (s *anyHitStore) Add(context.Context, []retrieval.Candidate) error { return nil }

type unitEmbedder struct{}

func (unitEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type verdictReviewer struct {
	verdict safety.Verdict
	err     error
}

func (r verdictReviewer) Review(context.Context, pkg.Draft) (safety.Verdict, error) {
	return r.verdict, r.err
}

func newTestEngine(reviewer safety.Reviewer) *Engine {
	store := &anyHitStore{hits: []retrieval.Candidate{
		{ID: "st-000", Text: "about sore throats",
			Metadata:  map[string]string{"topic": "sore_throat", "tags": "sore_throat,respiratory"},
			Embedding: []float32{1, 0}},
	}}
	if reviewer == nil {
		reviewer = safety.NewRuleReviewer()
	}
	return NewEngine(
		session.NewStore(0),
		nlu.NewExtractor(nlu.NewLexiconTagger(), nil),
		policy.NewEngine(),
		retrieval.NewSearcher(store, unitEmbedder{}, 0),
		reviewer,
		nil,
		nil,
	)
}

func TestTurn_EmergencyOnFirstTurn(t *testing.T) {
	e := newTestEngine(nil)
	reply, err := e.Turn(context.Background(), "s1", "Crushing chest pain and I can't breathe")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusEmergency, reply.Status)
	require.Equal(t, "cardiorespiratory_red_flag", reply.Rationale)
	require.Equal(t, "Call 112 / go to the emergency department now.", reply.NextStep)
	require.Empty(t, reply.Categories)
	require.Equal(t, pkg.Disclaimer, reply.Disclaimer)
}

func TestTurn_MultiTurnSlotFilling(t *testing.T) {
	e := newTestEngine(nil)
	ctx := context.Background()

	reply, err := e.Turn(ctx, "s1", "I have a sore throat")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusAsk, reply.Status)
	require.Equal(t, "How long has this been going on (e.g., hours, days, weeks)?", reply.Reply)

	reply, err = e.Turn(ctx, "s1", "2 days")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusAsk, reply.Status)
	require.Equal(t, "How old are you?", reply.Reply)

	reply, err = e.Turn(ctx, "s1", "35 years old")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusAsk, reply.Status)
	require.Equal(t, "How severe is it (mild, moderate, or severe)?", reply.Reply)

	reply, err = e.Turn(ctx, "s1", "mild")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusSafe, reply.Status)
	require.Contains(t, reply.Reply, "Upper-respiratory")
	require.Equal(t, "Self-care and monitoring are reasonable; recheck if not improving.", reply.NextStep)
	require.Equal(t, []string{"sore_throat", "respiratory"}, reply.Categories)
	require.Contains(t, strings.ToLower(reply.Disclaimer), pkg.DisclaimerPhrase)
}

func TestTurn_InfantFever(t *testing.T) {
	e := newTestEngine(nil)
	reply, err := e.Turn(context.Background(), "s1", "My 2 month old has a fever since yesterday")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusEmergency, reply.Status)
	require.Equal(t, "infant_fever", reply.Rationale)
	require.Equal(t, "Fever in an infant under 3 months is an emergency.", reply.Reply)
}

func TestTurn_NegatedRedFlagStaysConversational(t *testing.T) {
	e := newTestEngine(nil)
	reply, err := e.Turn(context.Background(), "s1", "No chest pain, just a mild cough")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusAsk, reply.Status)
	require.Equal(t, "How long has this been going on (e.g., hours, days, weeks)?", reply.Reply)
}

func TestTurn_BlockVerdictReplacesDraft(t *testing.T) {
	e := newTestEngine(verdictReviewer{verdict: safety.Verdict{Action: safety.ActionBlock, Reason: "meds"}})
	reply, err := e.Turn(context.Background(), "s1", "mild cough for 2 days, 35 years old")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusAsk, reply.Status)
	require.Equal(t, blockedMessage, reply.Reply)
	require.Equal(t, "blocked_by_safety_checker", reply.Rationale)
	require.Equal(t, pkg.Disclaimer, reply.Disclaimer)
	require.Empty(t, reply.Categories)
}

func TestTurn_RewriteVerdictReplacesMessage(t *testing.T) {
	e := newTestEngine(verdictReviewer{verdict: safety.Verdict{
		Action: safety.ActionRewrite, Reason: "diagnostic_claim", Text: safety.RewriteMessage,
	}})
	reply, err := e.Turn(context.Background(), "s1", "mild cough for 2 days, 35 years old")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusSafe, reply.Status)
	require.Equal(t, safety.RewriteMessage, reply.Reply)
}

func TestTurn_MissingDisclaimerRewriteRestoresCanonical(t *testing.T) {
	e := newTestEngine(verdictReviewer{verdict: safety.Verdict{
		Action: safety.ActionRewrite, Reason: "missing_disclaimer",
	}})
	reply, err := e.Turn(context.Background(), "s1", "mild cough for 2 days, 35 years old")
	require.NoError(t, err)
	require.Equal(t, pkg.Disclaimer, reply.Disclaimer)
	// The original message survives a disclaimer-only rewrite.
	require.Contains(t, reply.Reply, "Upper-respiratory")
}

func TestTurn_ReviewerErrorFailsTheTurn(t *testing.T) {
	e := newTestEngine(verdictReviewer{err: errors.New("defect")})
	_, err := e.Turn(context.Background(), "s1", "mild cough for 2 days, 35 years old")
	require.Error(t, err)
}

func TestFinalize_ClampsRationaleOnRuneBoundary(t *testing.T) {
	e := newTestEngine(nil)
	long := "x" + strings.Repeat("é", 600)
	d := e.finalize(context.Background(), pkg.Draft{
		Status:    pkg.StatusEmergency,
		Message:   "This may be an emergency.",
		Rationale: long,
	}, "")
	require.LessOrEqual(t, len(d.Rationale), rationaleMaxLen)
	require.True(t, utf8.ValidString(d.Rationale))
	require.True(t, strings.HasPrefix(long, d.Rationale))
}

func TestTurn_NoSearcherDegradesToEmptyCategories(t *testing.T) {
	e := NewEngine(
		session.NewStore(0),
		nlu.NewExtractor(nlu.NewLexiconTagger(), nil),
		policy.NewEngine(),
		nil,
		safety.NewRuleReviewer(),
		nil,
		nil,
	)
	reply, err := e.Turn(context.Background(), "s1", "mild cough for 2 days, 35 years old")
	require.NoError(t, err)
	require.Equal(t, pkg.StatusSafe, reply.Status)
	require.Empty(t, reply.Categories)
}
