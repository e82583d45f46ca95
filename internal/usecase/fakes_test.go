package usecase

import (
	"context"
	"errors"
	"sync"

	"university-form-agent/internal/domain"
)

type modelResponse struct {
	text string
	err  error
}

type fakeModel struct {
	responses []modelResponse
	prompts   []string
	block     bool
}

func (m *fakeModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if len(m.responses) == 0 {
		return "", errors.New("no model response configured")
	}
	idx := len(m.prompts) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx].text, m.responses[idx].err
}

func (m *fakeModel) lastPrompt() string {
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func replying(text string) *fakeModel {
	return &fakeModel{responses: []modelResponse{{text: text}}}
}

func failing(err error) *fakeModel {
	return &fakeModel{responses: []modelResponse{{err: err}}}
}

type fakeStore struct {
	mu        sync.Mutex
	turns     map[string][]domain.Turn
	getErr    error
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{turns: map[string][]domain.Turn{}}
}

func (s *fakeStore) Get(_ context.Context, id string) ([]domain.Turn, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	t, ok := s.turns[id]
	return t, ok, nil
}

func (s *fakeStore) Append(_ context.Context, id string, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.turns[id] = append(s.turns[id], turn)
	return nil
}

type statusErr struct{ code int }

func (e *statusErr) Error() string       { return "upstream status" }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func textQuestion(text string) domain.Question {
	return domain.Question{
		QuestionText: text,
		QuestionType: domain.QuestionText,
		AnswerType:   domain.AnswerShort,
		Required:     true,
	}
}

func category(name string, questions ...domain.Question) domain.Category {
	return domain.Category{CategoryName: name, Questions: questions}
}
