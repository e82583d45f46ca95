package domain

import (
	"errors"
	"fmt"
)

// QuestionType selects how a question is answered.
type QuestionType string

const (
	QuestionText   QuestionType = "text"
	QuestionSelect QuestionType = "select"
)

// AnswerType is the external-facing answer label. Values are case-sensitive
// and must round-trip unchanged.
type AnswerType string

const (
	AnswerShort          AnswerType = "question-courte"
	AnswerLong           AnswerType = "question-longue"
	AnswerDocument       AnswerType = "document"
	AnswerPhoneNumber    AnswerType = "phone-number"
	AnswerNumber         AnswerType = "number"
	AnswerMultipleChoice AnswerType = "multiple-choice"
	AnswerSingleChoice   AnswerType = "single-choice"
	AnswerDate           AnswerType = "date"
	AnswerDropdown       AnswerType = "dropdown"
	AnswerEmail          AnswerType = "email"
)

// AnswerTypes lists every accepted answer type in prompt order.
var AnswerTypes = []AnswerType{
	AnswerShort,
	AnswerLong,
	AnswerDocument,
	AnswerPhoneNumber,
	AnswerNumber,
	AnswerMultipleChoice,
	AnswerSingleChoice,
	AnswerDate,
	AnswerDropdown,
	AnswerEmail,
}

// SelectAnswerTypes are the answer types meaningful for select questions.
var SelectAnswerTypes = []AnswerType{AnswerMultipleChoice, AnswerSingleChoice, AnswerDropdown}

func (a AnswerType) Valid() bool {
	for _, t := range AnswerTypes {
		if a == t {
			return true
		}
	}
	return false
}

func (q QuestionType) Valid() bool {
	return q == QuestionText || q == QuestionSelect
}

// FormDraft is a university form under construction.
type FormDraft struct {
	FormName        string     `json:"form_name"`
	FormDescription string     `json:"form_description"`
	Categories      []Category `json:"categories"`
}

// Category groups related questions. CategoryName is the identity key used
// when merging drafts.
type Category struct {
	CategoryName string     `json:"category_name"`
	Questions    []Question `json:"questions"`
}

type Question struct {
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	AnswerType   AnswerType   `json:"answer_type"`
	Required     bool         `json:"required"`
	Choices      []Choice     `json:"choices,omitempty"`
}

type Choice struct {
	Text string `json:"text"`
}

// Validate checks the question/choice shape rules of a single category.
func (c Category) Validate() error {
	if c.CategoryName == "" {
		return errors.New("domain: category_name is required")
	}
	for i, q := range c.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("domain: category %q question %d: %w", c.CategoryName, i, err)
		}
	}
	return nil
}

func (q Question) Validate() error {
	if q.QuestionText == "" {
		return errors.New("question_text is required")
	}
	if !q.QuestionType.Valid() {
		return fmt.Errorf("unsupported question_type %q", q.QuestionType)
	}
	if !q.AnswerType.Valid() {
		return fmt.Errorf("unsupported answer_type %q", q.AnswerType)
	}
	switch q.QuestionType {
	case QuestionSelect:
		if len(q.Choices) == 0 {
			return errors.New("select question requires choices")
		}
	case QuestionText:
		if len(q.Choices) > 0 {
			return errors.New("text question must not have choices")
		}
	}
	return nil
}

// Clone returns a deep copy of the draft. Nil slices stay nil.
func (f *FormDraft) Clone() *FormDraft {
	if f == nil {
		return nil
	}
	out := *f
	if f.Categories != nil {
		out.Categories = make([]Category, len(f.Categories))
		for i, c := range f.Categories {
			out.Categories[i] = c.Clone()
		}
	}
	return &out
}

func (c Category) Clone() Category {
	if c.Questions != nil {
		qs := make([]Question, len(c.Questions))
		for i, q := range c.Questions {
			if q.Choices != nil {
				choices := make([]Choice, len(q.Choices))
				copy(choices, q.Choices)
				q.Choices = choices
			}
			qs[i] = q
		}
		c.Questions = qs
	}
	return c
}
