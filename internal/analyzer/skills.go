package analyzer

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultSkillThreshold is the fuzzy partial-ratio cutoff for counting a
// skill as present in a text.
const DefaultSkillThreshold = 70

// MatchSkills classifies each skill against the resume and the job
// description using fuzzy partial-ratio matching. A skill found in the
// resume is matched; a skill absent from the resume but present in the job
// description is missing. Skills found in neither are left out of both
// lists and do not count toward the skill score.
func MatchSkills(resumeText, jobDescription string, skills []string, threshold int) (matched, missing []string) {
	matched = []string{}
	missing = []string{}

	resume := strings.ToLower(resumeText)
	jd := strings.ToLower(jobDescription)

	for _, skill := range skills {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s == "" {
			continue
		}
		if fuzzy.PartialRatio(s, resume) >= threshold {
			matched = append(matched, skill)
		} else if fuzzy.PartialRatio(s, jd) >= threshold {
			missing = append(missing, skill)
		}
	}
	return matched, missing
}
