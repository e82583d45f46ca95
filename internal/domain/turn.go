package domain

import "time"

// Turn is one recorded exchange of a conversation: either a user utterance
// with the assistant's question, or a generated form snapshot. Turns are
// append-only.
type Turn struct {
	User          string     `json:"user,omitempty"`
	Assistant     string     `json:"assistant,omitempty"`
	FormState     *FormDraft `json:"form_state,omitempty"`
	FormGenerated bool       `json:"form_generated,omitempty"`
	FormData      *FormDraft `json:"form_data,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HasSnapshot reports whether the turn saved a form state of any kind.
func (t Turn) HasSnapshot() bool {
	return t.FormState != nil || t.FormGenerated
}

// Clone returns a copy of the turn that shares no form data with t.
func (t Turn) Clone() Turn {
	t.FormState = t.FormState.Clone()
	t.FormData = t.FormData.Clone()
	return t
}
