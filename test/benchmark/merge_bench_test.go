package benchmark

import (
	"fmt"
	"testing"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// buildQuotes returns n distinct quotes spread across a handful of categories.
// The offset shifts the text sequence so two builds can overlap partially.
func buildQuotes(n, offset int) []domain.Quote {
	categories := []string{"Motivation", "Life", "Wisdom", "Inspiration", "Server"}

	quotes := make([]domain.Quote, 0, n)
	for i := 0; i < n; i++ {
		quotes = append(quotes, domain.Quote{
			Text:     fmt.Sprintf("quote %d", offset+i),
			Category: categories[(offset+i)%len(categories)],
		})
	}

	return quotes
}

// BenchmarkMerge measures the union merge across collection sizes, with
// half the remote batch duplicating local records.
func BenchmarkMerge(b *testing.B) {
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			local := buildQuotes(size, 0)
			remote := buildQuotes(size, size/2)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_ = domain.Merge(local, remote)
			}
		})
	}
}

// BenchmarkMerge_AllDuplicates measures the degenerate cycle where the
// remote batch adds nothing new.
func BenchmarkMerge_AllDuplicates(b *testing.B) {
	local := buildQuotes(1000, 0)
	remote := buildQuotes(100, 0)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = domain.Merge(local, remote)
	}
}

// BenchmarkFilterByCategory measures the category filter on a large collection.
func BenchmarkFilterByCategory(b *testing.B) {
	quotes := buildQuotes(1000, 0)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = domain.FilterByCategory(quotes, "Wisdom")
	}
}

// BenchmarkCategories measures the distinct-category listing.
func BenchmarkCategories(b *testing.B) {
	quotes := buildQuotes(1000, 0)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = domain.Categories(quotes)
	}
}
