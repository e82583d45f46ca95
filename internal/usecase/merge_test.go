package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"university-form-agent/internal/domain"
)

func TestVerifyPreserved(t *testing.T) {
	personal := category("Personal Info", textQuestion("Full name?"))
	academic := category("Academic Info", textQuestion("Current degree?"))

	require.True(t, VerifyPreserved(nil, []domain.Category{academic}))
	require.True(t, VerifyPreserved([]domain.Category{personal}, []domain.Category{personal}))
	require.True(t, VerifyPreserved([]domain.Category{personal, academic}, []domain.Category{academic, personal}))
	require.False(t, VerifyPreserved([]domain.Category{personal}, []domain.Category{academic}))
	require.False(t, VerifyPreserved([]domain.Category{personal, academic}, []domain.Category{personal}))
	require.False(t, VerifyPreserved([]domain.Category{personal}, nil))
}

func TestVerifyPreserved_NameOnly(t *testing.T) {
	existing := []domain.Category{category("Personal Info", textQuestion("Q1"))}
	generated := []domain.Category{category("Personal Info", textQuestion("Q2"))}
	require.True(t, VerifyPreserved(existing, generated))
}

func TestRepairCategories_AppendsAfterExisting(t *testing.T) {
	existing := []domain.Category{category("Personal Info", textQuestion("Full name?"))}
	generated := []domain.Category{category("Academic Info", textQuestion("Current degree?"))}

	out := RepairCategories(existing, generated)
	require.Len(t, out, 2)
	require.Equal(t, "Personal Info", out[0].CategoryName)
	require.Equal(t, "Academic Info", out[1].CategoryName)
}

func TestRepairCategories_ExistingWinsOnCollision(t *testing.T) {
	existing := []domain.Category{category("Personal Info", textQuestion("Q1"))}
	generated := []domain.Category{
		category("Personal Info", textQuestion("Q2")),
		category("Contact", textQuestion("Email?")),
	}

	out := RepairCategories(existing, generated)
	require.Len(t, out, 2)
	require.Equal(t, existing[0], out[0])
	require.Equal(t, "Q1", out[0].Questions[0].QuestionText)
	require.Equal(t, "Contact", out[1].CategoryName)
}

func TestMissingCategories(t *testing.T) {
	existing := []domain.Category{category("A"), category("B"), category("C")}
	generated := []domain.Category{category("B")}
	require.Equal(t, []string{"A", "C"}, missingCategories(existing, generated))
}
