package analyzer

import (
	"math"
	"strings"
)

// sectionNames are the canonical resume sections the section score looks
// for. Matching is a case-insensitive substring check.
var sectionNames = []string{
	"education",
	"experience",
	"skills",
	"projects",
	"summary",
	"certifications",
}

// Weights for folding the per-axis scores into the overall score. Skill
// coverage dominates, presentation axes trail.
const (
	weightSkill    = 0.35
	weightATS      = 0.30
	weightSections = 0.20
	weightStyle    = 0.15
)

// StyleScore grades bullet-point usage on a coarse ladder. Both the bullet
// glyph and the "- " dash marker count.
func StyleScore(text string) int {
	bullets := strings.Count(text, "•") + strings.Count(text, "- ")
	switch {
	case bullets >= 10:
		return 100
	case bullets >= 5:
		return 75
	case bullets >= 3:
		return 50
	default:
		return 25
	}
}

// ATSScore measures keyword density: the share of job-description words
// longer than four characters that literally occur in the resume.
func ATSScore(resumeText, jobDescription string) int {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(jobDescription)) {
		if len(word) > 4 {
			keywords = append(keywords, word)
		}
	}
	if len(keywords) == 0 {
		return 0
	}

	resume := strings.ToLower(resumeText)
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(resume, keyword) {
			hits++
		}
	}

	score := int(math.Round(float64(hits) / float64(len(keywords)) * 100))
	if score > 100 {
		score = 100
	}
	return score
}

// SectionScore is the fraction of canonical sections present, scaled to 100.
func SectionScore(text string) int {
	lower := strings.ToLower(text)
	found := 0
	for _, section := range sectionNames {
		if strings.Contains(lower, section) {
			found++
		}
	}
	return int(math.Round(float64(found) / float64(len(sectionNames)) * 100))
}

// SkillScore is the matched share of the requested skills, scaled to 100.
func SkillScore(matched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

// OverallScore folds the axis scores into a single weighted figure.
func OverallScore(skill, ats, sections, style int) int {
	weighted := weightSkill*float64(skill) +
		weightATS*float64(ats) +
		weightSections*float64(sections) +
		weightStyle*float64(style)
	return int(math.Round(weighted))
}
