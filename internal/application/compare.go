package application

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

type Verdict string

const (
	VerdictLeft  Verdict = "left"
	VerdictRight Verdict = "right"
	VerdictEqual Verdict = "equal"
)

const NotAvailable = "N/A"

var numberRun = regexp.MustCompile(`[\d.]+`)

// ExtractNumber pulls the first run of digits and dots out of s ("3.6GHz" is
// 3.6, "1.2.3" is 1.2). ok is false when there is no usable number.
func ExtractNumber(s string) (float64, bool) {
	run := numberRun.FindString(s)
	for end := len(run); end > 0; end-- {
		if n, err := strconv.ParseFloat(run[:end], 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func valueNumber(v domain.SpecValue) (float64, bool) {
	if v.Kind == domain.SpecNumber {
		return v.Num, true
	}
	return ExtractNumber(v.String())
}

// CompareNumeric says which side holds the larger number. Anything that does
// not parse on both sides compares equal.
func CompareNumeric(left, right string) Verdict {
	l, okL := ExtractNumber(left)
	r, okR := ExtractNumber(right)
	return verdict(l, okL, r, okR)
}

func CompareValues(left, right domain.SpecValue) Verdict {
	l, okL := valueNumber(left)
	r, okR := valueNumber(right)
	return verdict(l, okL, r, okR)
}

func verdict(l float64, okL bool, r float64, okR bool) Verdict {
	switch {
	case !okL || !okR:
		return VerdictEqual
	case l > r:
		return VerdictLeft
	case r > l:
		return VerdictRight
	default:
		return VerdictEqual
	}
}

type SpecDiffRow struct {
	Key     string  `json:"key"`
	Left    string  `json:"left"`
	Right   string  `json:"right"`
	Verdict Verdict `json:"verdict"`
}

// DiffSpecs lines up two spec maps key by key: left keys in order, then keys
// only the right side has. A side without the key shows N/A.
func DiffSpecs(left, right domain.SpecVariant) []SpecDiffRow {
	leftEntries := domain.Entries(left)
	rightEntries := domain.Entries(right)

	rightByKey := make(map[string]domain.SpecValue, len(rightEntries))
	for _, e := range rightEntries {
		rightByKey[e.Key] = e.Value
	}

	rows := make([]SpecDiffRow, 0, len(leftEntries)+len(rightEntries))
	seen := make(map[string]bool, len(leftEntries))
	for _, e := range leftEntries {
		seen[e.Key] = true
		row := SpecDiffRow{Key: e.Key, Left: e.Value.String(), Right: NotAvailable, Verdict: VerdictEqual}
		if rv, ok := rightByKey[e.Key]; ok {
			row.Right = rv.String()
			row.Verdict = CompareValues(e.Value, rv)
		}
		rows = append(rows, row)
	}
	for _, e := range rightEntries {
		if seen[e.Key] {
			continue
		}
		rows = append(rows, SpecDiffRow{Key: e.Key, Left: NotAvailable, Right: e.Value.String(), Verdict: VerdictEqual})
	}
	return rows
}

// CompareCandidates lists the parts that can sit opposite left: same
// category, not left itself.
func CompareCandidates(all []domain.Part, left domain.Part) []domain.Part {
	out := make([]domain.Part, 0)
	for _, p := range all {
		if p.Category == left.Category && p.ID != left.ID {
			out = append(out, p)
		}
	}
	return out
}

func FilterByName(parts []domain.Part, term string) []domain.Part {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return parts
	}
	out := make([]domain.Part, 0)
	for _, p := range parts {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}
