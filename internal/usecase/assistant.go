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
	RedirectQuestion  = "I need to focus on creating university-related forms. Could you please provide a prompt related to educational or academic forms?"
	OutOfScopeMessage = "Please provide a context related to educational or academic forms."
	OutOfScopeHint    = "Try focusing on university registration, application, or other educational forms."
)

// ConversationStore is the process-wide transcript store.
type ConversationStore interface {
	HistoryReader
	Append(ctx context.Context, conversationID string, turn domain.Turn) error
}

// Assistant runs the chat and generate flows: scope check, store lookup,
// engine call, store update.
type Assistant struct {
	store     ConversationStore
	dialogue  *DialogueEngine
	generator *GenerationEngine
	now       func() time.Time
}

type ChatInput struct {
	Prompt         string
	ConversationID string
	CurrentForm    *CurrentForm
}

type GenerateInput struct {
	Context        FormContext
	ConversationID string
	CurrentForm    *CurrentForm
}

func NewAssistant(s ConversationStore, d *DialogueEngine, g *GenerationEngine) (*Assistant, error) {
	if s == nil {
		return nil, errors.New("usecase: conversation store must not be nil")
	}
	if d == nil {
		return nil, errors.New("usecase: dialogue engine must not be nil")
	}
	if g == nil {
		return nil, errors.New("usecase: generation engine must not be nil")
	}
	return &Assistant{store: s, dialogue: d, generator: g, now: time.Now}, nil
}

func (a *Assistant) Chat(ctx context.Context, in ChatInput) (AskResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return AskResult{}, newError(ErrorInvalidInput, "Missing prompt", nil)
	}
	convID := strings.TrimSpace(in.ConversationID)

	if !IsInScope(prompt) {
		ctxzap.Info(ctx, "chat prompt rejected by intent filter")
		return AskResult{Question: RedirectQuestion, ConversationID: resolveConversationID(convID)}, nil
	}

	var history []domain.Turn
	if convID != "" {
		turns, found, err := a.store.Get(ctx, convID)
		if err != nil {
			return AskResult{}, newError(ErrorInternal, "store_read_error", err)
		}
		if found {
			history = turns
		}
	}

	res := a.dialogue.Ask(ctx, AskRequest{
		Utterance:      in.Prompt,
		History:        history,
		ConversationID: convID,
		CurrentForm:    in.CurrentForm,
	})

	turn := domain.Turn{User: in.Prompt, Assistant: res.Question, CreatedAt: a.now().UTC()}
	if in.CurrentForm != nil {
		state := in.CurrentForm.Draft
		turn.FormState = &state
	}
	if err := a.store.Append(ctx, res.ConversationID, turn); err != nil {
		return AskResult{}, newError(ErrorInternal, "store_write_error", err)
	}

	ctxzap.Info(ctx, "follow-up question recorded",
		zap.String("conversation_id", res.ConversationID),
		zap.Int("history_turns", len(history)),
	)
	return res, nil
}

func (a *Assistant) Generate(ctx context.Context, in GenerateInput) (domain.FormDraft, error) {
	if in.Context == nil {
		return domain.FormDraft{}, newError(ErrorInvalidInput, "Missing form context", nil)
	}
	if text, ok := in.Context.(TextContext); ok && !IsInScope(string(text)) {
		return domain.FormDraft{}, newError(ErrorOutOfScope, OutOfScopeMessage, nil)
	}
	convID := strings.TrimSpace(in.ConversationID)

	draft, err := a.generator.Generate(ctx, GenerateRequest{
		Context:        in.Context,
		ConversationID: convID,
		CurrentForm:    in.CurrentForm,
	})
	if err != nil {
		return domain.FormDraft{}, err
	}

	if convID != "" {
		_, found, err := a.store.Get(ctx, convID)
		if err != nil {
			return domain.FormDraft{}, newError(ErrorInternal, "store_read_error", err)
		}
		if found {
			snapshot := draft
			turn := domain.Turn{FormGenerated: true, FormData: &snapshot, CreatedAt: a.now().UTC()}
			if err := a.store.Append(ctx, convID, turn); err != nil {
				return domain.FormDraft{}, newError(ErrorInternal, "store_write_error", err)
			}
		}
	}

	ctxzap.Info(ctx, "form generated",
		zap.String("conversation_id", convID),
		zap.Int("categories", len(draft.Categories)),
	)
	return draft, nil
}
