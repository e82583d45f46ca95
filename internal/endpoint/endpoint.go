// Package endpoint decodes /chat and /generate request bodies, runs them
// through the assistant and maps the outcome onto a status and JSON body.
// It is shared by the HTTP router and the Lambda handler.
package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"university-form-agent/internal/domain"
	"university-form-agent/internal/usecase"
)

const invalidBody = "invalid request body"

type Service interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.AskResult, error)
	Generate(ctx context.Context, in usecase.GenerateInput) (domain.FormDraft, error)
}

// Reply is a transport-neutral response.
type Reply struct {
	Status int
	Body   any
}

type ErrorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	Suggestion string `json:"suggestion,omitempty"`
}

type chatRequest struct {
	Prompt         *string         `json:"prompt"`
	ConversationID string          `json:"conversation_id"`
	CurrentForm    json.RawMessage `json:"current_form"`
}

type generateRequest struct {
	Context        json.RawMessage `json:"context"`
	ConversationID string          `json:"conversation_id"`
	CurrentForm    json.RawMessage `json:"current_form"`
}

type Endpoints struct {
	svc Service
}

func New(svc Service) (*Endpoints, error) {
	if svc == nil {
		return nil, errors.New("endpoint: service must not be nil")
	}
	return &Endpoints{svc: svc}, nil
}

func (e *Endpoints) Chat(ctx context.Context, body []byte) Reply {
	var req chatRequest
	if err := decodeBody(body, &req); err != nil {
		return errorReply(ctx, usecase.InvalidInput(invalidBody, nil))
	}
	form, err := usecase.ParseCurrentForm(req.CurrentForm)
	if err != nil {
		return errorReply(ctx, usecase.InvalidInput("invalid current_form", err))
	}

	in := usecase.ChatInput{ConversationID: req.ConversationID, CurrentForm: form}
	if req.Prompt != nil {
		in.Prompt = *req.Prompt
	}
	res, err := e.svc.Chat(ctx, in)
	if err != nil {
		return errorReply(ctx, err)
	}
	return Reply{Status: http.StatusOK, Body: res}
}

func (e *Endpoints) Generate(ctx context.Context, body []byte) Reply {
	var req generateRequest
	if err := decodeBody(body, &req); err != nil {
		return errorReply(ctx, usecase.InvalidInput(invalidBody, nil))
	}
	formCtx, err := parseContext(req.Context)
	if err != nil {
		return errorReply(ctx, usecase.InvalidInput("invalid context", err))
	}
	form, err := usecase.ParseCurrentForm(req.CurrentForm)
	if err != nil {
		return errorReply(ctx, usecase.InvalidInput("invalid current_form", err))
	}

	draft, err := e.svc.Generate(ctx, usecase.GenerateInput{
		Context:        formCtx,
		ConversationID: req.ConversationID,
		CurrentForm:    form,
	})
	if err != nil {
		return errorReply(ctx, err)
	}
	return Reply{Status: http.StatusOK, Body: draft}
}

// parseContext returns nil for an absent, null or blank context so the
// assistant reports it as missing.
func parseContext(raw json.RawMessage) (usecase.FormContext, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	fc, err := usecase.ParseFormContext(raw)
	if err != nil {
		return nil, err
	}
	if text, ok := fc.(usecase.TextContext); ok && strings.TrimSpace(string(text)) == "" {
		return nil, nil
	}
	return fc, nil
}

func decodeBody(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("endpoint: empty body")
	}
	return json.Unmarshal(body, out)
}

func errorReply(ctx context.Context, err error) Reply {
	var ue *usecase.Error
	if !errors.As(err, &ue) {
		ctxzap.Error(ctx, "unexpected service error", zap.Error(err))
		return Reply{
			Status: http.StatusInternalServerError,
			Body:   ErrorBody{Error: err.Error(), Code: string(usecase.ErrorInternal)},
		}
	}

	body := ErrorBody{Error: ue.Message(), Code: string(ue.Code)}
	switch ue.Code {
	case usecase.ErrorInvalidInput:
		ctxzap.Info(ctx, "request rejected", zap.String("reason", ue.Reason), zap.Error(ue.Err))
		return Reply{Status: http.StatusBadRequest, Body: body}
	case usecase.ErrorOutOfScope:
		ctxzap.Info(ctx, "context out of scope")
		body.Suggestion = usecase.OutOfScopeHint
		return Reply{Status: http.StatusBadRequest, Body: body}
	default:
		ctxzap.Error(ctx, "request failed",
			zap.String("code", string(ue.Code)),
			zap.String("reason", ue.Reason),
			zap.Error(ue.Err),
		)
		return Reply{Status: http.StatusInternalServerError, Body: body}
	}
}
