package briefing

import "strings"

// wordsPerSecond assumes a 240-words-per-minute reading rate.
const wordsPerSecond = 4

// EstimateReadingTime returns the estimated reading time in seconds for a
// summary and its key points, rounding up.
func EstimateReadingTime(summary string, keyPoints []string) int {
	words := len(strings.Fields(summary)) + len(strings.Fields(strings.Join(keyPoints, " ")))
	return (words + wordsPerSecond - 1) / wordsPerSecond
}
