// Package analyzer scores resume text against a job description. All
// scoring is deterministic string work; the same input always produces the
// same report.
package analyzer

import (
	"errors"

	"github.com/imran601021/Resume/internal/domain"
)

var (
	ErrEmptyResume = errors.New("resume text is empty")
	ErrEmptyJob    = errors.New("job description is empty")
	ErrNoSkills    = errors.New("no skills to match against")
)

// Input is one analysis request.
type Input struct {
	ResumeText     string
	JobDescription string
	Skills         []string
}

// Engine runs the scoring pipeline with a fixed skill-match threshold.
type Engine struct {
	threshold int
}

func NewEngine(threshold int) *Engine {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultSkillThreshold
	}
	return &Engine{threshold: threshold}
}

// Analyze validates the input, runs every scoring axis and assembles the
// report. The AISummary field is left nil; enrichment is the caller's
// concern.
func (e *Engine) Analyze(in Input) (*domain.Report, error) {
	if Preprocess(in.ResumeText) == "" {
		return nil, ErrEmptyResume
	}
	if Preprocess(in.JobDescription) == "" {
		return nil, ErrEmptyJob
	}
	skills := cleanSkills(in.Skills)
	if len(skills) == 0 {
		return nil, ErrNoSkills
	}

	matched, missing := MatchSkills(in.ResumeText, in.JobDescription, skills, e.threshold)

	scores := domain.Scores{
		Skill:    SkillScore(len(matched), len(skills)),
		ATS:      ATSScore(in.ResumeText, in.JobDescription),
		Style:    StyleScore(in.ResumeText),
		Sections: SectionScore(in.ResumeText),
	}
	scores.Overall = OverallScore(scores.Skill, scores.ATS, scores.Sections, scores.Style)

	return &domain.Report{
		Scores:           scores,
		MatchedSkills:    matched,
		MissingSkills:    missing,
		FormattingIssues: CheckFormatting(in.ResumeText),
		Recommendations:  recommendations(scores, missing),
	}, nil
}

// recommendations derives advice from the weak axes. The tailoring hint is
// always present so the list is never empty.
func recommendations(scores domain.Scores, missing []string) []string {
	recs := []string{"Tailor your resume to reflect the job description better."}
	if len(missing) > 0 {
		recs = append(recs, "Add missing technical or domain-specific skills.")
	}
	if scores.Style < 75 {
		recs = append(recs, "Use more bullet points and clean formatting.")
	}
	if scores.Sections < 100 {
		recs = append(recs, "Ensure all key resume sections are present.")
	}
	return recs
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		trimmed := Preprocess(s)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, s)
	}
	return out
}
