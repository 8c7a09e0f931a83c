package safety

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"triage-assistant/pkg"
)

// DefaultTimeout bounds the external arbiter call; a timeout is a normal,
// handled outcome, not an error surfaced to the caller of the hybrid.
const DefaultTimeout = 3 * time.Second

// LLMReviewer submits the draft to an external judgment model.  Any failure
// (timeout, transport, malformed response) is returned as an error so the
// hybrid can fall back to the rule tier.
type LLMReviewer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewLLMReviewer constructs the external tier.  An empty model defaults to
// gpt-4o-mini; a non-positive timeout falls back to DefaultTimeout.
func NewLLMReviewer(client *openai.Client, model string, timeout time.Duration) *LLMReviewer {
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LLMReviewer{client: client, model: model, timeout: timeout}
}

// Review asks the model for a verdict on the serialized draft.
func (r *LLMReviewer) Review(ctx context.Context, draft pkg.Draft) (Verdict, error) {
	payload, err := json.Marshal(map[string]pkg.Draft{"DRAFT": draft})
	if err != nil {
		return Verdict{}, fmt.Errorf("encode draft: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reviewSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("arbiter call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, errors.New("arbiter: empty response")
	}
	return parseVerdict(resp.Choices[0].Message.Content)
}

// parseVerdict extracts the first JSON object from content and validates
// the {action, reason, text} contract.
func parseVerdict(content string) (Verdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Verdict{}, errors.New("arbiter: no JSON object in response")
	}
	var v Verdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return Verdict{}, fmt.Errorf("arbiter: decode verdict: %w", err)
	}
	v.Action = Action(strings.ToUpper(string(v.Action)))
	switch v.Action {
	case ActionApprove, ActionRewrite, ActionBlock:
		return v, nil
	default:
		return Verdict{}, fmt.Errorf("arbiter: bad action %q", v.Action)
	}
}
