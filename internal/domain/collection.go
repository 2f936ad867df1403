package domain

import "sort"

// Merge combines a local and a remote collection into their union under
// structural equality. Concatenation order is local then remote, and
// deduplication is order-stable, so among duplicates the local copy and
// its position are kept. Neither input is mutated.
//
// The result contains every element of local ∪ remote exactly once and
// nothing else.
func Merge(local, remote []Quote) []Quote {
	merged := make([]Quote, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local)+len(remote))

	for _, q := range local {
		if _, ok := seen[q.Key()]; ok {
			continue
		}

		seen[q.Key()] = struct{}{}
		merged = append(merged, q)
	}

	for _, q := range remote {
		if _, ok := seen[q.Key()]; ok {
			continue
		}

		seen[q.Key()] = struct{}{}
		merged = append(merged, q)
	}

	return merged
}

// FilterByCategory returns the quotes whose category equals the given
// one, preserving order. Matching is exact and case-sensitive. The
// CategoryAll value and the empty string select the whole collection.
func FilterByCategory(quotes []Quote, category string) []Quote {
	if category == "" || category == CategoryAll {
		out := make([]Quote, len(quotes))
		copy(out, quotes)

		return out
	}

	out := make([]Quote, 0)
	for _, q := range quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}

	return out
}

// Categories returns the distinct categories present in the collection,
// sorted lexicographically.
func Categories(quotes []Quote) []string {
	seen := make(map[string]struct{}, len(quotes))

	out := make([]string, 0)
	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}

	sort.Strings(out)

	return out
}
