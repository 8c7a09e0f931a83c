package nlu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingTagger struct{}

func (failingTagger) Tag(context.Context, string) ([]Entity, error) {
	return nil, errors.New("model unavailable")
}

func TestExtractor_Signals(t *testing.T) {
	ex := NewExtractor(NewLexiconTagger(), nil)
	res := ex.Extract(context.Background(), "I'm 35 years old, pregnant, fever for 2 days")

	require.NotNil(t, res.Age)
	require.Equal(t, 35, *res.Age)
	require.True(t, res.Pregnant)
	require.NotNil(t, res.DurationDays)
	require.Equal(t, 2.0, *res.DurationDays)
	require.Len(t, res.Entities, 1)
	require.Equal(t, "fever", res.Entities[0].Text)
}

func TestExtractor_NoSignals(t *testing.T) {
	ex := NewExtractor(NewLexiconTagger(), nil)
	res := ex.Extract(context.Background(), "hello")

	require.Nil(t, res.Age)
	require.False(t, res.Pregnant)
	require.Nil(t, res.DurationDays)
	require.Empty(t, res.Entities)
}

func TestExtractor_TaggerFailureDegrades(t *testing.T) {
	ex := NewExtractor(failingTagger{}, nil)
	res := ex.Extract(context.Background(), "fever for 2 days")

	// The turn is not aborted; only entities are missing.
	require.Empty(t, res.Entities)
	require.NotNil(t, res.DurationDays)
	require.Equal(t, 2.0, *res.DurationDays)
}

func TestExtractor_NilTagger(t *testing.T) {
	ex := NewExtractor(nil, nil)
	res := ex.Extract(context.Background(), "fever for 2 days")
	require.Empty(t, res.Entities)
}
