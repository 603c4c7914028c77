package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imran601021/Resume/internal/domain"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "worker", "analyze", "prefetch", "healthcheck", "supervise", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestVersionOutput(t *testing.T) {
	root := newRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "resume-analyzer")
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeJSONOutput(t *testing.T) {
	resume := writeFixture(t, "resume.txt", "Go developer with SQL and Docker experience.")
	jd := writeFixture(t, "jd.txt", "Go and SQL required for this role.")

	root := newRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetArgs([]string{"analyze", "--resume", resume, "--jd", jd, "--skills", "Go,SQL"})

	require.NoError(t, root.Execute())

	var report domain.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, []string{"Go", "SQL"}, report.MatchedSkills)
	assert.Empty(t, report.MissingSkills)
	assert.NotZero(t, report.Scores.Overall)
}

func TestAnalyzePrettyOutput(t *testing.T) {
	resume := writeFixture(t, "resume.txt", "Go developer with SQL experience.")
	jd := writeFixture(t, "jd.txt", "Go and SQL required.")

	root := newRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetArgs([]string{"analyze", "--resume", resume, "--jd", jd, "--skills", "Go", "--format", "pretty"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Overall score:")
	assert.Contains(t, out.String(), "Matched skills: Go")
}

func TestAnalyzeUnknownFormat(t *testing.T) {
	resume := writeFixture(t, "resume.txt", "text")
	jd := writeFixture(t, "jd.txt", "text")

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"analyze", "--resume", resume, "--jd", jd, "--skills", "Go", "--format", "xml"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestAnalyzeMissingResumeFile(t *testing.T) {
	jd := writeFixture(t, "jd.txt", "text")

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"analyze", "--resume", "/does/not/exist.txt", "--jd", jd, "--skills", "Go"})

	assert.Error(t, root.Execute())
}

func TestAnalyzeProfileNeedsCachedDatapack(t *testing.T) {
	t.Setenv("MODEL_CACHE_DIR", t.TempDir())
	resume := writeFixture(t, "resume.txt", "Go developer.")
	jd := writeFixture(t, "jd.txt", "Go required.")

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"analyze", "--resume", resume, "--jd", jd, "--skills-profile", "backend"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefetch")
}

func TestPrintReport(t *testing.T) {
	out := new(bytes.Buffer)
	printReport(out, &domain.Report{
		Scores:           domain.Scores{Overall: 59, Skill: 67, ATS: 50, Style: 50, Sections: 67},
		MatchedSkills:    []string{"Go", "SQL"},
		MissingSkills:    []string{"Kubernetes"},
		FormattingIssues: []string{"Not enough bullet points."},
		Recommendations:  []string{"Add missing technical or domain-specific skills."},
		AISummary: &domain.Enrichment{
			Summary:        "Solid backend match.",
			Recommendation: "Highlight Kubernetes exposure.",
		},
	})

	s := out.String()
	assert.Contains(t, s, "Overall score: 59/100")
	assert.Contains(t, s, "Matched skills: Go, SQL")
	assert.Contains(t, s, "Missing skills: Kubernetes")
	assert.Contains(t, s, "  - Not enough bullet points.")
	assert.Contains(t, s, "Summary: Solid backend match.")
}

func TestJoinOrDash(t *testing.T) {
	assert.Equal(t, "-", joinOrDash(nil))
	assert.Equal(t, "Go", joinOrDash([]string{"Go"}))
	assert.Equal(t, "Go, SQL", joinOrDash([]string{"Go", "SQL"}))
}
