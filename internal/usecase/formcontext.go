package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"university-form-agent/internal/domain"
)

// FormContext is the description a form is generated from: either free
// text (TextContext) or key/value answers (StructuredContext).
type FormContext interface {
	describe() string
}

// TextContext is used verbatim.
type TextContext string

func (t TextContext) describe() string { return string(t) }

// ContextField is one key/value answer of a structured context.
type ContextField struct {
	Key   string
	Value json.RawMessage
}

// StructuredContext keeps the fields in the order the caller sent them.
type StructuredContext []ContextField

func (s StructuredContext) describe() string {
	var b strings.Builder
	for i, f := range s {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(humanizeKey(f.Key))
		b.WriteString(": ")
		b.WriteString(renderValue(f.Value))
	}
	return b.String()
}

// humanizeKey turns "first_name" into "First name".
func humanizeKey(key string) string {
	s := strings.ToLower(strings.ReplaceAll(key, "_", " "))
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func renderValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// ParseFormContext resolves the request's context value into a FormContext.
// A JSON string becomes TextContext and a JSON object a StructuredContext.
func ParseFormContext(raw json.RawMessage) (FormContext, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New("usecase: context is empty")
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("usecase: decode text context: %w", err)
		}
		return TextContext(s), nil
	case '{':
		fields, err := decodeOrderedObject(raw)
		if err != nil {
			return nil, err
		}
		return fields, nil
	default:
		return nil, errors.New("usecase: context must be a string or an object")
	}
}

func decodeOrderedObject(raw json.RawMessage) (StructuredContext, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("usecase: decode structured context: %w", err)
	}
	out := StructuredContext{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("usecase: decode structured context key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("usecase: unexpected structured context key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("usecase: decode structured context value %q: %w", key, err)
		}
		out = append(out, ContextField{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("usecase: decode structured context: %w", err)
	}
	return out, nil
}

// CurrentForm is a caller-supplied draft. Raw holds the JSON as received so
// it can be quoted back to the model unchanged.
type CurrentForm struct {
	Draft domain.FormDraft
	Raw   json.RawMessage
}

// ParseCurrentForm accepts a JSON object or a JSON string holding one.
// Absent, null, empty string and empty drafts yield nil.
func ParseCurrentForm(raw json.RawMessage) (*CurrentForm, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("usecase: decode current form string: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		raw = json.RawMessage(strings.TrimSpace(s))
	}
	if raw[0] != '{' {
		return nil, errors.New("usecase: current form must be a JSON object")
	}
	var draft domain.FormDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("usecase: decode current form: %w", err)
	}
	if draft.FormName == "" && draft.FormDescription == "" && len(draft.Categories) == 0 {
		return nil, nil
	}
	return &CurrentForm{Draft: draft, Raw: raw}, nil
}

// NewCurrentForm wraps an already-decoded draft.
func NewCurrentForm(draft domain.FormDraft) (*CurrentForm, error) {
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("usecase: encode current form: %w", err)
	}
	return &CurrentForm{Draft: draft, Raw: raw}, nil
}

// categories returns the draft's categories, empty when there is no form.
func (c *CurrentForm) categories() []domain.Category {
	if c == nil {
		return nil
	}
	return c.Draft.Categories
}

func (c *CurrentForm) indented() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, c.Raw, "", "  "); err != nil {
		return string(c.Raw)
	}
	return buf.String()
}
