package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"university-form-agent/internal/domain"
)

// HistoryReader reads a conversation transcript.
type HistoryReader interface {
	Get(ctx context.Context, conversationID string) ([]domain.Turn, bool, error)
}

// GenerationEngine produces a complete FormDraft. Categories of a supplied
// current form are preserved verbatim; new categories may only be appended.
type GenerationEngine struct {
	model   Model
	history HistoryReader
	timeout time.Duration
}

type GenerateRequest struct {
	Context        FormContext
	ConversationID string
	CurrentForm    *CurrentForm
}

func NewGenerationEngine(m Model, h HistoryReader, timeout time.Duration) (*GenerationEngine, error) {
	if m == nil {
		return nil, errors.New("usecase: model must not be nil")
	}
	if h == nil {
		return nil, errors.New("usecase: history reader must not be nil")
	}
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}
	return &GenerationEngine{model: m, history: h, timeout: timeout}, nil
}

// Generate returns either a complete draft or a single *Error; no partial
// form is ever returned.
func (e *GenerationEngine) Generate(ctx context.Context, req GenerateRequest) (domain.FormDraft, error) {
	if req.Context == nil {
		return domain.FormDraft{}, newError(ErrorInvalidInput, "Missing form context", nil)
	}

	var history []domain.Turn
	if req.ConversationID != "" {
		turns, found, err := e.history.Get(ctx, req.ConversationID)
		if err != nil {
			return domain.FormDraft{}, newError(ErrorInternal, "store_read_error", err)
		}
		if found {
			history = turns
		}
	}

	existing := req.CurrentForm.categories()
	prompt := buildGenerationPrompt(
		buildContextDescription(req.Context, history, req.CurrentForm),
		len(existing) > 0,
	)

	raw, callErr := callModel(ctx, e.model, e.timeout, prompt)
	if callErr != nil {
		return domain.FormDraft{}, callErr
	}

	var draft domain.FormDraft
	if err := decodeModelJSON(raw, &draft); err != nil {
		return domain.FormDraft{}, newError(ErrorUpstreamMalformed, "form_decode", err)
	}

	if len(existing) > 0 && !VerifyPreserved(existing, draft.Categories) {
		ctxzap.Warn(ctx, "generated form dropped existing categories, repairing",
			zap.Strings("missing", missingCategories(existing, draft.Categories)),
		)
		draft.Categories = RepairCategories(existing, draft.Categories)
	}

	if err := validateGenerated(existing, draft); err != nil {
		return domain.FormDraft{}, newError(ErrorUpstreamMalformed, "form_shape", err)
	}
	return draft, nil
}

// validateGenerated checks every category that is not an exact copy of the
// caller's category of the same name. A category the model rewrote under an
// existing name is checked like any other.
func validateGenerated(existing []domain.Category, draft domain.FormDraft) error {
	if len(draft.Categories) == 0 {
		return errors.New("usecase: generated form has no categories")
	}
	byName := make(map[string]domain.Category, len(existing))
	for _, c := range existing {
		byName[c.CategoryName] = c
	}
	for _, c := range draft.Categories {
		if prev, ok := byName[c.CategoryName]; ok && reflect.DeepEqual(prev, c) {
			continue
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("usecase: %w", err)
		}
	}
	return nil
}
