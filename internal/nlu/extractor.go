package nlu

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Entity is a labelled mention inside the analyzed text.  Negated marks
// mentions whose governing clause is negated ("denies fever").
type Entity struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Negated bool   `json:"negated"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// ExtractionResult holds the per-turn structured signals.  It is a pure
// function of the input text and is never persisted.
type ExtractionResult struct {
	Age          *int
	Pregnant     bool
	DurationDays *float64
	Entities     []Entity
}

// EntityTagger is the external sequence-labelling capability: it labels
// entity mentions and flags negated clauses.
type EntityTagger interface {
	Tag(ctx context.Context, text string) ([]Entity, error)
}

// Extractor computes an ExtractionResult for the effective text of a turn.
// Age, pregnancy and duration are regex heuristics; entities come from the
// tagger.  Extraction never blocks a turn: tagger failures degrade to an
// empty entity list.
type Extractor struct {
	tagger EntityTagger
	logger *zap.Logger
}

// NewExtractor constructs an Extractor.  Both arguments may be nil.
func NewExtractor(tagger EntityTagger, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{tagger: tagger, logger: logger}
}

// Extract derives structured signals from text.  It never returns an error.
func (e *Extractor) Extract(ctx context.Context, text string) ExtractionResult {
	var res ExtractionResult
	if age, ok := ParseAge(text); ok {
		res.Age = &age
	}
	res.Pregnant = ParsePregnant(text)
	if days, ok := ParseDurationDays(text); ok {
		res.DurationDays = &days
	}
	if e.tagger != nil {
		ents, err := e.tagger.Tag(ctx, text)
		if err != nil {
			// Degrade, never abort the turn.
			e.logger.Warn("entity_tagger_error", zap.String("error_type", errType(err)))
		} else {
			res.Entities = ents
		}
	}
	return res
}

// errType names the error's Go type.  Error strings can echo user text, so
// only the type is logged.
func errType(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%T", err)
}
