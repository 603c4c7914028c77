package analyzer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minBullets    = 3
	capsLineRunes = 10
	maxLineRunes  = 160
)

// CheckFormatting inspects the raw resume text for layout problems and
// returns human-readable issues. An empty slice means no complaints.
func CheckFormatting(text string) []string {
	issues := []string{}

	if countBullets(text) < minBullets {
		issues = append(issues, "Use more bullet points for better readability.")
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if isUpperLine(line) && utf8.RuneCountInString(line) > capsLineRunes {
			issues = append(issues, "Avoid using all-caps lines; use bold or italics instead.")
			break
		}
	}

	long := 0
	for _, line := range lines {
		if utf8.RuneCountInString(line) > maxLineRunes {
			long++
		}
	}
	if long > 0 {
		issues = append(issues, fmt.Sprintf("%d lines are too long. Try breaking them up.", long))
	}

	return issues
}

func countBullets(text string) int {
	n := strings.Count(text, "•")
	if dashes := strings.Count(text, "- "); dashes > n {
		n = dashes
	}
	return n
}

// isUpperLine reports whether a line contains cased letters and none of
// them is lowercase, i.e. the line is shouting.
func isUpperLine(line string) bool {
	hasCased := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
