package engine

import "slices"

// Rank returns the records ordered by viewer count, highest first. Records with
// equal counts keep their scrape order. The input slice is left untouched.
func Rank(records []StreamRecord) []StreamRecord {
	return RankBy(records, func(r StreamRecord) int64 { return r.ViewerCount })
}

// RankBy is Rank for any item that carries a viewer count.
func RankBy[T any](items []T, count func(T) int64) []T {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b T) int {
		ca, cb := count(a), count(b)
		switch {
		case ca > cb:
			return -1
		case ca < cb:
			return 1
		}
		return 0
	})
	return ranked
}
