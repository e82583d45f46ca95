package usecase

import "university-form-agent/internal/domain"

// VerifyPreserved reports whether every category name of existing is present
// in generated. Presence is checked by name only, not by question content.
func VerifyPreserved(existing, generated []domain.Category) bool {
	if len(existing) == 0 {
		return true
	}
	names := categoryNames(existing)
	found := make(map[string]struct{}, len(names))
	for _, c := range generated {
		if _, ok := names[c.CategoryName]; ok {
			found[c.CategoryName] = struct{}{}
		}
	}
	return len(found) == len(names)
}

// RepairCategories returns existing in its original order followed by every
// generated category whose name does not collide with an existing one. On a
// name collision the existing version wins.
func RepairCategories(existing, generated []domain.Category) []domain.Category {
	names := categoryNames(existing)
	out := make([]domain.Category, 0, len(existing)+len(generated))
	out = append(out, existing...)
	for _, c := range generated {
		if _, ok := names[c.CategoryName]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// missingCategories lists existing names absent from generated, in order.
func missingCategories(existing, generated []domain.Category) []string {
	have := categoryNames(generated)
	var missing []string
	for _, c := range existing {
		if _, ok := have[c.CategoryName]; !ok {
			missing = append(missing, c.CategoryName)
		}
	}
	return missing
}

func categoryNames(cats []domain.Category) map[string]struct{} {
	names := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		names[c.CategoryName] = struct{}{}
	}
	return names
}
