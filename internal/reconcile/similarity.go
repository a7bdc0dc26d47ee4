package reconcile

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/temirov/etl-agents/internal/tabular"
)

// normalizeCell folds the formatting differences two independent ETL
// implementations are allowed to disagree on: surrounding whitespace and
// numeric rendering ("007", "7", "7.0" all compare equal).
func normalizeCell(cell string) string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return ""
	}
	if numeric, parseErr := strconv.ParseFloat(trimmed, 64); parseErr == nil {
		return strconv.FormatFloat(numeric, 'f', -1, 64)
	}
	return trimmed
}

// rowKey is the exact-match identity of a row after normalization.
func rowKey(row tabular.Row) string {
	normalized := make([]string, len(row))
	for index, cell := range row {
		normalized[index] = normalizeCell(cell)
	}
	return strings.Join(normalized, "\x1f")
}

// cellSimilarity scores two cells in 0..1: 1 for normalized equality,
// otherwise a normalized edit-distance ratio.
func cellSimilarity(left, right string) float64 {
	normalizedLeft := normalizeCell(left)
	normalizedRight := normalizeCell(right)
	if normalizedLeft == normalizedRight {
		return 1
	}
	// The edit distance counts runes, so the denominator must too.
	longest := max(utf8.RuneCountInString(normalizedLeft), utf8.RuneCountInString(normalizedRight))
	if longest == 0 {
		return 1
	}
	distance := levenshtein(normalizedLeft, normalizedRight)
	return 1 - float64(distance)/float64(longest)
}

// rowSimilarity is the mean cell similarity across the wider of the two
// rows; cells missing on one side score zero.
func rowSimilarity(left, right tabular.Row) float64 {
	width := max(len(left), len(right))
	if width == 0 {
		return 1
	}
	var total float64
	for index := 0; index < width; index++ {
		if index >= len(left) || index >= len(right) {
			continue
		}
		total += cellSimilarity(left[index], right[index])
	}
	return total / float64(width)
}

func levenshtein(left, right string) int {
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	previous := make([]int, len(rightRunes)+1)
	current := make([]int, len(rightRunes)+1)
	for column := range previous {
		previous[column] = column
	}
	for rowIndex := 1; rowIndex <= len(leftRunes); rowIndex++ {
		current[0] = rowIndex
		for column := 1; column <= len(rightRunes); column++ {
			substitution := previous[column-1]
			if leftRunes[rowIndex-1] != rightRunes[column-1] {
				substitution++
			}
			current[column] = min(substitution, min(previous[column]+1, current[column-1]+1))
		}
		previous, current = current, previous
	}
	return previous[len(rightRunes)]
}
