package overview

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// AllChipLabel is the label of the synthetic chip bound to the empty filter.
const AllChipLabel = "Todas"

// Chip is a clickable filter bound to one turma value. The empty value means
// "all".
type Chip struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Active bool   `json:"active"`
}

// BuildChipList returns the "Todas" chip (active) followed by one chip per
// distinct non-empty turma of rows, ordered by year then sequence number.
func BuildChipList(rows []Row) []Chip {
	seen := make(map[string]struct{}, len(rows))
	turmas := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Turma == "" {
			continue
		}
		if _, ok := seen[row.Turma]; ok {
			continue
		}
		seen[row.Turma] = struct{}{}
		turmas = append(turmas, row.Turma)
	}
	SortTurmas(turmas)

	chips := make([]Chip, 0, len(turmas)+1)
	chips = append(chips, Chip{Label: AllChipLabel, Value: "", Active: true})
	for _, turma := range turmas {
		chips = append(chips, Chip{Label: turma, Value: turma})
	}
	return chips
}

// SortTurmas orders "N/YEAR" labels by year, then by N. Labels without a year
// are ordered by N among themselves. Non-numeric components yield NaN, which
// compares as unordered, so those labels keep their relative position.
func SortTurmas(turmas []string) {
	slices.SortStableFunc(turmas, compareTurmas)
}

func compareTurmas(a, b string) int {
	na, ya, aHasYear := turmaKey(a)
	nb, yb, bHasYear := turmaKey(b)
	switch {
	case !aHasYear && !bHasYear:
		return compareFloat(na, nb)
	case aHasYear != bHasYear:
		return 0
	case ya != yb:
		return compareFloat(ya, yb)
	}
	return compareFloat(na, nb)
}

// compareFloat returns 0 whenever either side is NaN.
func compareFloat(a, b float64) int {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// turmaKey splits "N/YEAR". hasYear is false when there is no "/" at all; a
// present but malformed year is NaN.
func turmaKey(turma string) (number, year float64, hasYear bool) {
	parts := strings.Split(turma, "/")
	number = parseComponent(parts[0])
	if len(parts) < 2 {
		return number, 0, false
	}
	return number, parseComponent(parts[1]), true
}

func parseComponent(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func activateChip(chips []Chip, value string) {
	for i := range chips {
		chips[i].Active = chips[i].Value == value
	}
}
