package safety

import (
	"context"

	"go.uber.org/zap"

	"triage-assistant/pkg"
)

// Hybrid composes a primary reviewer with a fallback: any primary failure
// silently yields the fallback's verdict.  With the rule tier as fallback,
// Review never returns a non-nil error; that guarantee is the component's
// core safety contract.
type Hybrid struct {
	primary  Reviewer
	fallback Reviewer
	logger   *zap.Logger
}

// NewHybrid builds the fallback combinator.  primary may be nil, in which
// case the fallback is used directly.
func NewHybrid(primary, fallback Reviewer, logger *zap.Logger) *Hybrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hybrid{primary: primary, fallback: fallback, logger: logger}
}

// Review tries the primary tier and falls back on any error.
func (h *Hybrid) Review(ctx context.Context, draft pkg.Draft) (Verdict, error) {
	if h.primary != nil {
		v, err := h.primary.Review(ctx, draft)
		if err == nil {
			return v, nil
		}
		h.logger.Warn("safety_llm_fallback", zap.String("error_type", "arbiter_failure"))
	}
	return h.fallback.Review(ctx, draft)
}
