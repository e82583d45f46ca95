package usecase

import (
	"strings"

	"university-form-agent/internal/domain"
)

const unnamed = "Unnamed"

// renderDialogueTranscript lists prior turns as User/Assistant lines and ends
// with the new utterance.
func renderDialogueTranscript(history []domain.Turn, utterance string) string {
	var b strings.Builder
	writeExchanges(&b, history, false)
	b.WriteString("User: " + utterance + "\n")
	return b.String()
}

// renderHistory renders a stored conversation for the generation prompt,
// marking saved form snapshots without re-serializing them.
func renderHistory(history []domain.Turn) string {
	var b strings.Builder
	writeExchanges(&b, history, true)
	return b.String()
}

func writeExchanges(b *strings.Builder, history []domain.Turn, markSnapshots bool) {
	for _, t := range history {
		if t.User != "" {
			b.WriteString("User: " + t.User + "\n")
		}
		if t.Assistant != "" {
			b.WriteString("Assistant: " + t.Assistant + "\n")
		}
		if markSnapshots && t.HasSnapshot() {
			b.WriteString("Previous form state was saved\n")
		}
	}
}

// renderFormSummary describes a draft's categories and questions for the
// dialogue prompt.
func renderFormSummary(form *CurrentForm) string {
	if form == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Current form state:\n")
	for _, c := range form.Draft.Categories {
		name := c.CategoryName
		if name == "" {
			name = unnamed
		}
		b.WriteString("Category: " + name + "\n")
		for _, q := range c.Questions {
			text := q.QuestionText
			if text == "" {
				text = unnamed
			}
			b.WriteString("  - Question: " + text)
			if q.QuestionType != "" {
				b.WriteString(" (Type: " + string(q.QuestionType) + ")")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func buildDialoguePrompt(transcript, formSummary string) string {
	return strings.Join([]string{
		"You are a university form creation assistant. You're having a conversation with a user to understand " +
			"what kind of university form they need. Here's the conversation history so far:",
		"",
		transcript,
		formSummary,
		"Generate ONE relevant follow-up question that would help gather more context about what the user needs " +
			"for their university form. Ask for specific details that would make the form more accurate and useful.",
		"",
		"If the user already has some form elements, acknowledge them and ask about additional sections " +
			"or information they might want to include.",
		"",
		"Return ONLY a JSON object with this structure:",
		`{"question":"YOUR FOLLOW-UP QUESTION HERE"}`,
	}, "\n")
}

// buildContextDescription assembles history, the caller's context and the
// structure to preserve.
func buildContextDescription(formCtx FormContext, history []domain.Turn, form *CurrentForm) string {
	var b strings.Builder
	b.WriteString("Form context:\n")
	if len(history) > 0 {
		b.WriteString("Conversation history:\n")
		b.WriteString(renderHistory(history))
	}
	b.WriteString(formCtx.describe() + "\n")
	if form != nil {
		b.WriteString("\nEXISTING FORM STRUCTURE TO PRESERVE:\n")
		b.WriteString(form.indented() + "\n")
	}
	return b.String()
}

func buildGenerationPrompt(contextDescription string, preserve bool) string {
	sections := []string{
		"Generate a university form based on this context:",
		contextDescription,
		"Create a well-structured form with appropriate categories and questions " +
			"for a university form. Each category should have 2-4 related questions.",
		"",
	}
	if preserve {
		sections = append(sections,
			"IMPORTANT: You MUST preserve all existing categories and questions exactly as provided. "+
				"DO NOT modify, remove, or change any existing elements. Only add new categories or questions "+
				"that complement the existing form.",
			"",
		)
	}
	sections = append(sections,
		"The form should follow typical university data collection standards.",
		"",
		"Return ONLY a JSON object with this exact structure:",
		formShape(),
		"",
		"IMPORTANT INSTRUCTIONS:",
		generationRules(preserve),
		"Return ONLY the JSON with no additional text or explanations",
	)
	return strings.Join(sections, "\n")
}

func formShape() string {
	return strings.Join([]string{
		`{`,
		`  "form_name": "Generate an appropriate form name",`,
		`  "form_description": "Generate a description for the form",`,
		`  "categories": [`,
		`    {`,
		`      "category_name": "Category Name",`,
		`      "questions": [`,
		`        {`,
		`          "question_text": "Question text here?",`,
		`          "question_type": "text or select",`,
		`          "answer_type": "` + strings.Join(answerTypeNames(domain.AnswerTypes), ", ") + `",`,
		`          "required": true or false,`,
		`          "choices": [`,
		`            { "text": "Choice 1" },`,
		`            { "text": "Choice 2" }`,
		`          ]`,
		`        }`,
		`      ]`,
		`    }`,
		`  ]`,
		`}`,
	}, "\n")
}

func generationRules(preserve bool) string {
	rules := []string{
		"1) Generate a clear, descriptive form_name that reflects the purpose of the form.",
		"2) Generate a helpful form_description that explains what the form is for.",
		"3) For text questions without choices, omit the 'choices' field entirely.",
		"4) Use 'required': true for essential information, false otherwise.",
		"5) Only use question_type values of 'text' or 'select'.",
		"6) Only use answer_type values: " + quotedList(domain.AnswerTypes) + ".",
		"7) When question_type='select', you MUST include choices and use answer_type values: " + quotedList(domain.SelectAnswerTypes) + ".",
		"8) When question_type='text', omit the choices field and use other answer_type values.",
		"9) Ensure the JSON is properly formatted and valid.",
	}
	if preserve {
		rules = append(rules,
			"10) Start your response with ALL existing categories and questions exactly as they are. "+
				"DO NOT rearrange or modify them. Add new categories only at the end.")
	}
	return strings.Join(rules, "\n")
}

func answerTypeNames(types []domain.AnswerType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func quotedList(types []domain.AnswerType) string {
	names := answerTypeNames(types)
	for i, n := range names {
		names[i] = "'" + n + "'"
	}
	return strings.Join(names, ", ")
}
