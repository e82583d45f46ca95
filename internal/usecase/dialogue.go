package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"university-form-agent/internal/domain"
)

const (
	FallbackEmptyQuestion = "Could you provide more details about what specific information you need to collect with this form?"
	FallbackQuestion      = "What specific details would you like to include in this university form?"
)

type followUpResponse struct {
	Question string `json:"question"`
}

// DialogueEngine produces one clarifying question per user utterance. It
// never fails: model problems are masked with a fixed fallback question.
// Recording the turn is left to the caller.
type DialogueEngine struct {
	model   Model
	timeout time.Duration
}

type AskRequest struct {
	Utterance      string
	History        []domain.Turn
	ConversationID string
	CurrentForm    *CurrentForm
}

type AskResult struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id"`
}

func NewDialogueEngine(m Model, timeout time.Duration) (*DialogueEngine, error) {
	if m == nil {
		return nil, errors.New("usecase: model must not be nil")
	}
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}
	return &DialogueEngine{model: m, timeout: timeout}, nil
}

func (e *DialogueEngine) Ask(ctx context.Context, req AskRequest) AskResult {
	convID := resolveConversationID(req.ConversationID)

	question, err := e.followUp(ctx, req)
	if err != nil {
		ctxzap.Warn(ctx, "follow-up question replaced by fallback",
			zap.String("conversation_id", convID),
			zap.String("code", string(err.Code)),
			zap.String("reason", err.Reason),
			zap.Error(err.Err),
		)
		question = FallbackQuestion
		if err.Code == ErrorUpstreamEmpty {
			question = FallbackEmptyQuestion
		}
	}
	return AskResult{Question: question, ConversationID: convID}
}

func (e *DialogueEngine) followUp(ctx context.Context, req AskRequest) (string, *Error) {
	prompt := buildDialoguePrompt(
		renderDialogueTranscript(req.History, req.Utterance),
		renderFormSummary(req.CurrentForm),
	)
	raw, callErr := callModel(ctx, e.model, e.timeout, prompt)
	if callErr != nil {
		return "", callErr
	}
	var out followUpResponse
	if err := decodeModelJSON(raw, &out); err != nil {
		return "", newError(ErrorUpstreamMalformed, "followup_decode", err)
	}
	question := strings.TrimSpace(out.Question)
	if question == "" {
		return "", newError(ErrorUpstreamMalformed, "followup_missing_question", errors.New("usecase: response has no question"))
	}
	return question, nil
}
