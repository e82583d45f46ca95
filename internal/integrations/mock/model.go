// Package mock provides a deterministic offline model used when
// ENABLE_MOCKS is set. It recognises the two prompt kinds by their wording.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"university-form-agent/internal/domain"
)

const (
	followUpMarker = "follow-up question"
	preserveMarker = "EXISTING FORM STRUCTURE TO PRESERVE:"

	FollowUpQuestion = "Which program or faculty is this form for, and which documents should applicants upload?"
)

// Model answers follow-up prompts with a fixed question and generation
// prompts with a canned application form, keeping any existing categories
// first.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, followUpMarker) {
		ctxzap.Info(ctx, "[MOCK] follow-up question")
		out, err := json.Marshal(map[string]string{"question": FollowUpQuestion})
		if err != nil {
			return "", fmt.Errorf("mock: marshal question: %w", err)
		}
		return string(out), nil
	}

	draft := cannedForm()
	if existing := existingCategories(prompt); len(existing) > 0 {
		draft.Categories = withExisting(existing, draft.Categories)
	}
	ctxzap.Info(ctx, "[MOCK] form generated", zap.Int("category_count", len(draft.Categories)))

	out, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("mock: marshal form: %w", err)
	}
	return string(out), nil
}

// existingCategories decodes the first JSON value after the preserve marker.
func existingCategories(prompt string) []domain.Category {
	i := strings.Index(prompt, preserveMarker)
	if i < 0 {
		return nil
	}
	var existing domain.FormDraft
	dec := json.NewDecoder(strings.NewReader(prompt[i+len(preserveMarker):]))
	if err := dec.Decode(&existing); err != nil {
		return nil
	}
	return existing.Categories
}

// withExisting puts existing categories first and drops canned categories
// whose names are already taken.
func withExisting(existing, canned []domain.Category) []domain.Category {
	taken := make(map[string]struct{}, len(existing))
	out := make([]domain.Category, 0, len(existing)+len(canned))
	for _, c := range existing {
		taken[c.CategoryName] = struct{}{}
		out = append(out, c)
	}
	for _, c := range canned {
		if _, ok := taken[c.CategoryName]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func cannedForm() domain.FormDraft {
	return domain.FormDraft{
		FormName:        "University Application Form",
		FormDescription: "Collects applicant details for admission to a university program.",
		Categories: []domain.Category{
			{
				CategoryName: "Applicant Information",
				Questions: []domain.Question{
					{QuestionText: "Full name", QuestionType: domain.QuestionText, AnswerType: domain.AnswerShort, Required: true},
					{QuestionText: "Email address", QuestionType: domain.QuestionText, AnswerType: domain.AnswerEmail, Required: true},
					{QuestionText: "Date of birth", QuestionType: domain.QuestionText, AnswerType: domain.AnswerDate, Required: true},
				},
			},
			{
				CategoryName: "Program Selection",
				Questions: []domain.Question{
					{
						QuestionText: "Desired degree level",
						QuestionType: domain.QuestionSelect,
						AnswerType:   domain.AnswerSingleChoice,
						Required:     true,
						Choices:      []domain.Choice{{Text: "Bachelor"}, {Text: "Master"}, {Text: "Doctorate"}},
					},
					{QuestionText: "Statement of purpose", QuestionType: domain.QuestionText, AnswerType: domain.AnswerLong, Required: false},
				},
			},
		},
	}
}
