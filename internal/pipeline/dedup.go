package pipeline

// Deduplicate removes rows equal across all six fields. The first occurrence wins and
// the relative order of the remaining rows is kept.
func Deduplicate(rows []RawRow) ([]RawRow, int) {
	seen := make(map[RawRow]struct{}, len(rows))
	result := make([]RawRow, 0, len(rows))

	for _, row := range rows {
		if _, ok := seen[row]; ok {
			continue
		}
		seen[row] = struct{}{}
		result = append(result, row)
	}

	return result, len(rows) - len(result)
}
