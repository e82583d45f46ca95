package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TokenSource yields the API token for an LLM provider.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a token supplied directly, e.g. from the environment.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", errors.New("paramstore: static token is empty")
	}
	return string(s), nil
}

// tokenPayload is the JSON shape stored in SSM for an API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// ParameterToken reads a {"token":"..."} parameter once and caches it for
// the process lifetime. A failed read is retried on the next call.
type ParameterToken struct {
	getter Getter
	name   string

	mu    sync.Mutex
	token string
}

func NewParameterToken(g Getter, name string) (*ParameterToken, error) {
	if g == nil {
		return nil, errors.New("paramstore: getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("paramstore: token parameter name is empty")
	}
	return &ParameterToken{getter: g, name: name}, nil
}

func (p *ParameterToken) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" {
		return p.token, nil
	}

	raw, err := p.getter.GetParameter(ctx, p.name)
	if err != nil {
		return "", fmt.Errorf("paramstore: fetch token: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("paramstore: unmarshal token value as JSON: %w", err)
	}
	if tp.Token == "" {
		return "", errors.New("paramstore: API token is empty")
	}
	p.token = tp.Token
	return p.token, nil
}
