package usecase

import "strings"

// disallowedTerms are topics never acceptable on their own.
var disallowedTerms = []string{
	"bomb", "weapon", "illegal", "hack", "pornography", "gambling",
	"drugs", "steal", "terrorism", "attack", "ecomerce",
}

// allowedContextTerms mark the university domain and rescue a prompt that
// mentions a disallowed term.
var allowedContextTerms = []string{
	"university", "algeria", "usthb", "college", "campus", "student", "faculty", "professor",
	"course", "degree", "academic", "enrollment", "registration",
	"admission", "education", "form", "document", "application",
}

// IsInScope reports whether a prompt may be sent to the model. Matching is
// case-insensitive substring matching: a prompt with no disallowed term
// passes; one with a disallowed term passes only alongside an allowed term.
func IsInScope(prompt string) bool {
	lower := strings.ToLower(prompt)
	if !containsAny(lower, disallowedTerms) {
		return true
	}
	return containsAny(lower, allowedContextTerms)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
