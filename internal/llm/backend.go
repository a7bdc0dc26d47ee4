package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/temirov/etl-agents/internal/align"
)

const (
	orderingSchemaName = "row_ordering"
	judgeSchemaName    = "ordering_score"

	// judgeOrderPreviewPositions bounds how much of a candidate permutation
	// is echoed into the evaluation prompt.
	judgeOrderPreviewPositions = 50
)

// ModelBackend implements align.Backend on top of one chat-completions model.
type ModelBackend struct {
	Client              Client
	BackendName         string
	ModelID             string
	MaxTokens           int
	Temperature         float64
	SupportsTemperature bool
	MaxRetries          uint64
}

func (b ModelBackend) Name() string { return b.BackendName }

type orderingResponse struct {
	Order      []int   `json:"order"`
	Confidence float64 `json:"confidence"`
}

type judgeResponse struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// ProposeOrdering asks the model for a permutation of the target rows.
func (b ModelBackend) ProposeOrdering(ctx context.Context, problem align.Problem) (align.Candidate, error) {
	userPrompt := fmt.Sprintf(orderingUserPromptTemplate,
		problem.SourceRowCount, problem.SourceCSV,
		problem.TargetRowCount, problem.TargetCSV,
		problem.TargetRowCount-1)

	rawText, callErr := b.complete(ctx, orderingSystemPrompt, userPrompt, orderingSchemaName, orderingResponseSchema)
	if callErr != nil {
		return align.Candidate{}, callErr
	}
	parsed, decodeErr := DecodeStrictJSON[orderingResponse](rawText)
	if decodeErr != nil {
		return align.Candidate{}, fmt.Errorf("parse ordering response: %w", decodeErr)
	}
	return align.Candidate{
		Backend:    b.BackendName,
		Order:      parsed.Order,
		Confidence: parsed.Confidence,
	}, nil
}

// Evaluate asks the model to score one candidate ordering in [0,1].
func (b ModelBackend) Evaluate(ctx context.Context, problem align.Problem, candidate align.Candidate) (align.Score, error) {
	userPrompt := fmt.Sprintf(judgeUserPromptTemplate,
		problem.SourceCSV, problem.TargetCSV,
		judgeOrderPreviewPositions, previewOrder(candidate.Order, judgeOrderPreviewPositions),
		candidate.Backend, candidate.Confidence)

	rawText, callErr := b.complete(ctx, judgeSystemPrompt, userPrompt, judgeSchemaName, judgeResponseSchema)
	if callErr != nil {
		return align.Score{}, callErr
	}
	parsed, decodeErr := DecodeStrictJSON[judgeResponse](rawText)
	if decodeErr != nil {
		return align.Score{}, fmt.Errorf("parse score response: %w", decodeErr)
	}
	if parsed.Score < 0 || parsed.Score > 1 {
		return align.Score{}, fmt.Errorf("score %v outside [0,1]", parsed.Score)
	}
	return align.Score{Value: parsed.Score, Rationale: parsed.Rationale}, nil
}

// complete issues the chat call with capped exponential backoff inside the
// caller's deadline.
func (b ModelBackend) complete(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema []byte) (string, error) {
	requestPayload := ChatCompletionRequest{
		Model: b.ModelID,
		Messages: []ChatMessage{
			{Role: "system", Content: strings.TrimSpace(systemPrompt)},
			{Role: "user", Content: strings.TrimSpace(userPrompt)},
		},
		MaxCompletionTokens: b.MaxTokens,
	}
	if b.SupportsTemperature && b.Temperature > 0 {
		temperature := b.Temperature
		requestPayload.Temperature = &temperature
	}
	requestPayload.WithJSONSchema(schemaName, schema)

	var rawText string
	operation := func() error {
		out, err := b.Client.CreateChatCompletion(ctx, requestPayload)
		if err != nil {
			return err
		}
		rawText = out
		return nil
	}
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), b.MaxRetries), ctx)
	if retryErr := backoff.Retry(operation, retryPolicy); retryErr != nil {
		return "", retryErr
	}
	return rawText, nil
}

func previewOrder(order []int, limit int) string {
	if len(order) > limit {
		order = order[:limit]
	}
	parts := make([]string, len(order))
	for index, rowIndex := range order {
		parts[index] = fmt.Sprintf("%d", rowIndex)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
