package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultModelTimeout  = 30 * time.Second
	conversationIDPrefix = "conv_"
)

// Model is the external generative-language model.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// callModel issues one bounded model call. No retries are attempted.
func callModel(ctx context.Context, m Model, timeout time.Duration, prompt string) (string, *Error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := m.Complete(callCtx, prompt)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(context.DeadlineExceeded, err)
		}
		return "", classifyModelError(err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", newError(ErrorUpstreamEmpty, "model_empty_response", errors.New("no content returned from AI model"))
	}
	return raw, nil
}

func resolveConversationID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return conversationIDPrefix + newUUID()
}

var newUUID = func() string {
	return uuid.NewString()
}
