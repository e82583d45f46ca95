package mock

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"university-form-agent/internal/domain"
)

func TestComplete_FollowUp(t *testing.T) {
	m := NewModel()
	out, err := m.Complete(context.Background(), "Generate ONE relevant follow-up question that would help")
	require.NoError(t, err)

	var got struct {
		Question string `json:"question"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, FollowUpQuestion, got.Question)
}

func TestComplete_CannedFormIsValid(t *testing.T) {
	m := NewModel()
	out, err := m.Complete(context.Background(), "Generate a university form based on this context:")
	require.NoError(t, err)

	var draft domain.FormDraft
	require.NoError(t, json.Unmarshal([]byte(out), &draft))
	require.Equal(t, "University Application Form", draft.FormName)
	require.Len(t, draft.Categories, 2)
	for _, c := range draft.Categories {
		require.NoError(t, c.Validate())
	}
}

func TestComplete_KeepsExistingCategoriesFirst(t *testing.T) {
	prompt := "Form context:\nadmissions\n\nEXISTING FORM STRUCTURE TO PRESERVE:\n" +
		`{"form_name":"Old","categories":[{"category_name":"Housing","questions":[]}]}` +
		"\n\nThe form should follow typical university data collection standards."

	out, err := NewModel().Complete(context.Background(), prompt)
	require.NoError(t, err)

	var draft domain.FormDraft
	require.NoError(t, json.Unmarshal([]byte(out), &draft))
	require.Len(t, draft.Categories, 3)
	require.Equal(t, "Housing", draft.Categories[0].CategoryName)
	require.Equal(t, "Applicant Information", draft.Categories[1].CategoryName)
}

func TestComplete_ExistingNameReplacesCannedCategory(t *testing.T) {
	prompt := "Form context:\nadmissions\n\nEXISTING FORM STRUCTURE TO PRESERVE:\n" +
		`{"form_name":"Old","categories":[{"category_name":"Applicant Information","questions":[{"question_text":"Student id","question_type":"text","answer_type":"number","required":true}]}]}` +
		"\n\nThe form should follow typical university data collection standards."

	out, err := NewModel().Complete(context.Background(), prompt)
	require.NoError(t, err)

	var draft domain.FormDraft
	require.NoError(t, json.Unmarshal([]byte(out), &draft))
	require.Len(t, draft.Categories, 2)
	require.Equal(t, "Applicant Information", draft.Categories[0].CategoryName)
	require.Equal(t, "Student id", draft.Categories[0].Questions[0].QuestionText)
	require.Equal(t, "Program Selection", draft.Categories[1].CategoryName)

	seen := map[string]bool{}
	for _, c := range draft.Categories {
		require.False(t, seen[c.CategoryName], "duplicate category %q", c.CategoryName)
		seen[c.CategoryName] = true
	}
}

func TestExistingCategories_Undecodable(t *testing.T) {
	require.Nil(t, existingCategories("EXISTING FORM STRUCTURE TO PRESERVE:\nnot json"))
	require.Nil(t, existingCategories("no marker"))
}
