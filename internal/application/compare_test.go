package application

import (
	"testing"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareNumeric(t *testing.T) {
	cases := []struct {
		left, right string
		want        Verdict
	}{
		{"8GB", "16GB", VerdictRight},
		{"foo", "bar", VerdictEqual},
		{"3.6GHz", "3.6GHz", VerdictEqual},
		{"5.4GHz", "4.9GHz", VerdictLeft},
		{"N/A", "16GB", VerdictEqual},
		{"DDR5-6000", "DDR4-3200", VerdictLeft},
		{"1.2.3", "1.3", VerdictRight},
		{".", "1", VerdictEqual},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CompareNumeric(tc.left, tc.right), "%s vs %s", tc.left, tc.right)
	}
}

func TestCompareValuesUsesNumbersDirectly(t *testing.T) {
	assert.Equal(t, VerdictLeft, CompareValues(domain.NumberValue(12), domain.StringValue("8 cores")))
	assert.Equal(t, VerdictEqual, CompareValues(domain.BoolValue(true), domain.NumberValue(1)))
}

func TestDiffSpecs(t *testing.T) {
	left, err := domain.ParseSpecs(domain.CategoryCPU, `{"socket":"AM5","cores":8,"cache":"32MB"}`)
	require.NoError(t, err)
	right, err := domain.ParseSpecs(domain.CategoryCPU, `{"cores":16,"boostClock":"5.7GHz"}`)
	require.NoError(t, err)

	rows := DiffSpecs(left, right)
	assert.Equal(t, []SpecDiffRow{
		{Key: "socket", Left: "AM5", Right: NotAvailable, Verdict: VerdictEqual},
		{Key: "cores", Left: "8", Right: "16", Verdict: VerdictRight},
		{Key: "cache", Left: "32MB", Right: NotAvailable, Verdict: VerdictEqual},
		{Key: "boostClock", Left: NotAvailable, Right: "5.7GHz", Verdict: VerdictEqual},
	}, rows)
}

func TestCompareCandidatesAndFilter(t *testing.T) {
	parts := []domain.Part{
		{ID: 1, Name: "Ryzen 7 7700X", Category: domain.CategoryCPU},
		{ID: 2, Name: "Ryzen 9 7950X", Category: domain.CategoryCPU},
		{ID: 3, Name: "RTX 4070", Category: domain.CategoryGPU},
		{ID: 4, Name: "Core i7-14700K", Category: domain.CategoryCPU},
	}
	candidates := CompareCandidates(parts, parts[0])
	require.Len(t, candidates, 2)
	assert.Equal(t, int64(2), candidates[0].ID)

	filtered := FilterByName(candidates, "  RYZEN ")
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(2), filtered[0].ID)
	assert.Len(t, FilterByName(candidates, ""), 2)
}
