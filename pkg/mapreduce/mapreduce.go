package mapreduce

import "github.com/dtnitsch/llm-repo-processor/pkg/analytics"

// Map generates a word frequency map for a single file's content.
func Map(content string, a *analytics.Analytics) map[string]int {
	return a.WordFrequency(content)
}

// Merge folds counts into acc, allocating acc when nil, and returns it.
// Used to keep one running map per unit instead of one map per file.
func Merge(acc, counts map[string]int) map[string]int {
	if acc == nil {
		acc = make(map[string]int, len(counts))
	}
	for word, count := range counts {
		acc[word] += count
	}
	return acc
}

// Reduce aggregates a slice of word frequency maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		Merge(finalResults, counts)
	}

	return finalResults
}
