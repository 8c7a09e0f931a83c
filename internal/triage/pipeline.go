package triage

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"triage-assistant/internal/dialogue"
	"triage-assistant/internal/nlu"
	"triage-assistant/internal/observability"
	"triage-assistant/internal/policy"
	"triage-assistant/internal/retrieval"
	"triage-assistant/internal/safety"
	"triage-assistant/internal/session"
	"triage-assistant/pkg"
)

// composeK is how many candidates the composer retrieves for category
// context; finalizeK widens the pull when categories are still missing.
const (
	composeK  = 4
	finalizeK = 6
)

// askFallbackQuestion is the generic clarifying question used when a draft
// reaches finalization without a valid status.
const askFallbackQuestion = "I need a bit more info to guide you safely. How long has this been going on?"

// blockedMessage replaces a draft the self-check refused to release.
const blockedMessage = "For safety, I need more information before I can guide you. Can you describe your symptoms and duration?"

// rationaleMaxLen clamps the rationale field at the boundary.
const rationaleMaxLen = 900

// Engine runs one conversational turn end to end.
type Engine struct {
	sessions  *session.Store
	extractor *nlu.Extractor
	policy    *policy.Engine
	searcher  *retrieval.Searcher // nil when retrieval is unavailable
	reviewer  safety.Reviewer
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewEngine wires the pipeline.  searcher and metrics may be nil; logger
// may be nil.
func NewEngine(
	sessions *session.Store,
	extractor *nlu.Extractor,
	policyEngine *policy.Engine,
	searcher *retrieval.Searcher,
	reviewer safety.Reviewer,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		sessions:  sessions,
		extractor: extractor,
		policy:    policyEngine,
		searcher:  searcher,
		reviewer:  reviewer,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Turn processes one user message.  Degradable failures (extraction,
// retrieval, external arbiter) are absorbed inside; a returned error means
// a programming defect and is the only propagated failure.
func (e *Engine) Turn(ctx context.Context, sessionID, message string) (pkg.TurnReply, error) {
	start := e.now()
	requestID := uuid.NewString()

	snap := e.sessions.Merge(sessionID, message)
	e.logger.Info("triage_request",
		zap.String("request_id", requestID),
		zap.String("session_id", sessionID),
		zap.Bool("has_age", snap.HasAge),
		zap.Bool("has_severity", snap.HasSeverity),
		zap.Bool("has_duration", snap.HasDuration),
	)

	ext := e.extractor.Extract(ctx, snap.EffectiveText)
	draft := e.decide(ctx, snap, ext, message)
	draft = e.finalize(ctx, draft, snap.EffectiveText)

	verdict, err := e.reviewer.Review(ctx, draft)
	if err != nil {
		// The hybrid reviewer absorbs capability failures; an error here is
		// a defect and fails the turn.
		e.observeError(requestID, sessionID, start, err)
		return pkg.TurnReply{}, fmt.Errorf("safety review: %w", err)
	}
	draft = applyVerdict(draft, verdict)
	draft = e.finalize(ctx, draft, snap.EffectiveText)

	elapsed := float64(e.now().Sub(start)) / float64(time.Millisecond)
	e.metrics.ObserveLatency(elapsed)
	e.metrics.RecordSafety(string(verdict.Action))
	e.metrics.RecordStatus(string(draft.Status))
	e.logger.Info("triage_response",
		zap.String("request_id", requestID),
		zap.String("session_id", sessionID),
		zap.String("status", string(draft.Status)),
		zap.String("safety_action", string(verdict.Action)),
		zap.Float64("elapsed_ms", elapsed),
		zap.Strings("categories", draft.Categories),
	)
	return draft.Reply(), nil
}

// decide runs red flags, then the gate, then retrieval-backed composition.
func (e *Engine) decide(ctx context.Context, snap session.Snapshot, ext nlu.ExtractionResult, rawMessage string) pkg.Draft {
	if v := e.policy.Evaluate(snap.EffectiveText, ext); v != nil {
		return composeEscalation(*v)
	}

	state, question := dialogue.Next(dialogue.Flags{
		HasSymptom:      nlu.HasSymptom(snap.EffectiveText),
		HasDuration:     snap.HasDuration,
		HasAge:          snap.HasAge,
		HasSeverity:     snap.HasSeverity,
		TextHasSeverity: nlu.ParseSeverity(rawMessage) != "",
	})
	if state != dialogue.StateReady {
		return composeAsk(question)
	}

	docs := e.search(ctx, snap.EffectiveText, composeK)
	return composeSafe(snap.EffectiveText, ext, retrieval.Categories(docs, maxCategories))
}

// search degrades to an empty result on any retrieval failure.
func (e *Engine) search(ctx context.Context, text string, k int) []retrieval.Candidate {
	if e.searcher == nil {
		return nil
	}
	docs, err := e.searcher.Search(ctx, text, retrieval.DefaultPoolSize, k)
	if err != nil {
		e.logger.Warn("retrieval_error", zap.String("error_type", fmt.Sprintf("%T", err)))
		return nil
	}
	return docs
}

// maxCategories caps the category list on every draft.
const maxCategories = 6

// finalize guarantees the reply contract: a valid status, the canonical
// disclaimer, SAFE categories (re-derived from retrieval when empty) and a
// clamped rationale.  It never fails.
func (e *Engine) finalize(ctx context.Context, draft pkg.Draft, effectiveText string) pkg.Draft {
	if !draft.Status.Valid() {
		draft.Status = pkg.StatusAsk
		if draft.Message == "" {
			draft.Message = askFallbackQuestion
		}
		if draft.Rationale == "" {
			draft.Rationale = "missing_status_fallback"
		}
	}
	if draft.Disclaimer == "" {
		draft.Disclaimer = pkg.Disclaimer
	}
	if draft.Status == pkg.StatusSafe {
		if len(draft.Categories) == 0 {
			draft.Categories = retrieval.Categories(e.search(ctx, effectiveText, finalizeK), maxCategories)
		}
	} else if len(draft.Categories) > 0 {
		draft.Categories = nil
	}
	if len(draft.Rationale) > rationaleMaxLen {
		cut := rationaleMaxLen
		for cut > 0 && !utf8.RuneStart(draft.Rationale[cut]) {
			cut--
		}
		draft.Rationale = draft.Rationale[:cut]
	}
	return draft
}

// applyVerdict folds the arbiter's decision into the draft.
func applyVerdict(draft pkg.Draft, v safety.Verdict) pkg.Draft {
	switch v.Action {
	case safety.ActionRewrite:
		if v.Reason == "missing_disclaimer" {
			draft.Disclaimer = pkg.Disclaimer
		} else if v.Text != "" {
			draft.Message = v.Text
		}
	case safety.ActionBlock:
		draft = pkg.Draft{
			Status:     pkg.StatusAsk,
			Message:    blockedMessage,
			Rationale:  "blocked_by_safety_checker",
			Disclaimer: draft.Disclaimer,
		}
	}
	return draft
}

func (e *Engine) observeError(requestID, sessionID string, start time.Time, err error) {
	elapsed := float64(e.now().Sub(start)) / float64(time.Millisecond)
	e.metrics.ObserveLatency(elapsed)
	e.metrics.RecordError(fmt.Sprintf("%T", err))
	e.logger.Error("triage_error",
		zap.String("request_id", requestID),
		zap.String("session_id", sessionID),
		zap.String("error_type", fmt.Sprintf("%T", err)),
	)
}
