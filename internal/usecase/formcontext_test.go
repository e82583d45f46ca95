package usecase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormContext_Text(t *testing.T) {
	fc, err := ParseFormContext(json.RawMessage(`"admission form for master students"`))
	require.NoError(t, err)
	require.Equal(t, TextContext("admission form for master students"), fc)
	require.Equal(t, "admission form for master students", fc.describe())
}

func TestParseFormContext_StructuredKeepsOrder(t *testing.T) {
	fc, err := ParseFormContext(json.RawMessage(`{"form_type":"registration","target_AUDIENCE":"first year","seats":120,"levels":["L1","L2"]}`))
	require.NoError(t, err)
	sc, ok := fc.(StructuredContext)
	require.True(t, ok)
	require.Len(t, sc, 4)
	require.Equal(t, "Form type: registration\nTarget audience: first year\nSeats: 120\nLevels: [\"L1\",\"L2\"]", sc.describe())
}

func TestParseFormContext_Rejects(t *testing.T) {
	for _, raw := range []string{``, `null`, `42`, `["a"]`, `{"a":`} {
		_, err := ParseFormContext(json.RawMessage(raw))
		require.Error(t, err, "raw=%q", raw)
	}
}

func TestHumanizeKey(t *testing.T) {
	require.Equal(t, "First name", humanizeKey("first_name"))
	require.Equal(t, "Faculty", humanizeKey("FACULTY"))
	require.Equal(t, "", humanizeKey(""))
}

func TestParseCurrentForm(t *testing.T) {
	obj := `{"form_name":"Enrollment","form_description":"d","categories":[{"category_name":"Personal Info","questions":[{"question_text":"Name?","question_type":"text","answer_type":"question-courte","required":true}]}]}`

	cf, err := ParseCurrentForm(json.RawMessage(obj))
	require.NoError(t, err)
	require.NotNil(t, cf)
	require.Equal(t, "Enrollment", cf.Draft.FormName)
	require.Len(t, cf.categories(), 1)

	quoted, err := json.Marshal(obj)
	require.NoError(t, err)
	cf, err = ParseCurrentForm(quoted)
	require.NoError(t, err)
	require.NotNil(t, cf)
	require.Equal(t, "Personal Info", cf.Draft.Categories[0].CategoryName)
	require.Contains(t, cf.indented(), "\n  \"form_name\": \"Enrollment\"")
}

func TestParseCurrentForm_Absent(t *testing.T) {
	for _, raw := range []string{``, `null`, `""`, `{}`} {
		cf, err := ParseCurrentForm(json.RawMessage(raw))
		require.NoError(t, err, "raw=%q", raw)
		require.Nil(t, cf, "raw=%q", raw)
	}
}

func TestParseCurrentForm_Invalid(t *testing.T) {
	for _, raw := range []string{`"not json"`, `[1,2]`, `{"categories":"x"}`} {
		_, err := ParseCurrentForm(json.RawMessage(raw))
		require.Error(t, err, "raw=%q", raw)
	}
}

func TestNilCurrentFormHasNoCategories(t *testing.T) {
	var cf *CurrentForm
	require.Empty(t, cf.categories())
}

func TestParseCurrentForm_NormalizesToTypedForm(t *testing.T) {
	cf, err := ParseCurrentForm(json.RawMessage(`{"form_name":"Draft","categories":[
		{"category_name":"Personal Info","color":"blue","questions":[
			{"question_text":"Full name?","question_type":"text","answer_type":"question-courte","hint":"as on passport"}
		]}
	]}`))
	require.NoError(t, err)

	cats := cf.categories()
	require.Len(t, cats, 1)
	require.False(t, cats[0].Questions[0].Required)

	out, err := json.Marshal(cats[0])
	require.NoError(t, err)
	require.NotContains(t, string(out), "color")
	require.NotContains(t, string(out), "hint")
	require.Contains(t, string(out), `"required":false`)
}
