package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/analyzer"
	"github.com/imran601021/Resume/internal/config"
	"github.com/imran601021/Resume/internal/domain"
	"github.com/imran601021/Resume/internal/modelcache"
	"github.com/imran601021/Resume/internal/skills"
)

func analyzeCmd() *cobra.Command {
	var (
		resumePath  string
		jdPath      string
		skillList   []string
		profileName string
		format      string
	)

	c := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one resume against a job description locally",
		Long: `Reads the resume and the job description from text files, scores them
and prints the report. Runs entirely offline: no database, queue or
object storage is needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := zap.NewNop()
			if debug {
				if log, err = zap.NewDevelopment(); err != nil {
					return err
				}
			}

			resume, err := os.ReadFile(resumePath)
			if err != nil {
				return fmt.Errorf("read resume: %w", err)
			}
			jd, err := os.ReadFile(jdPath)
			if err != nil {
				return fmt.Errorf("read job description: %w", err)
			}

			if len(skillList) == 0 {
				if profileName == "" {
					return fmt.Errorf("pass --skills or --skills-profile")
				}
				skillList, err = profileSkills(cfg, profileName, log)
				if err != nil {
					return err
				}
			}

			engine := analyzer.NewEngine(cfg.Analyzer.SkillMatchThreshold)
			report, err := engine.Analyze(analyzer.Input{
				ResumeText:     string(resume),
				JobDescription: string(jd),
				Skills:         skillList,
			})
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "pretty":
				printReport(cmd.OutOrStdout(), report)
				return nil
			default:
				return fmt.Errorf("unknown format %q (want json or pretty)", format)
			}
		},
	}

	c.Flags().StringVar(&resumePath, "resume", "", "path to the resume text file (required)")
	c.Flags().StringVar(&jdPath, "jd", "", "path to the job description text file (required)")
	c.Flags().StringSliceVar(&skillList, "skills", nil, "comma-separated skills to match")
	c.Flags().StringVar(&profileName, "skills-profile", "", "named skills profile from the cached datapack")
	c.Flags().StringVar(&format, "format", "json", "output format: json or pretty")
	_ = c.MarkFlagRequired("resume")
	_ = c.MarkFlagRequired("jd")
	return c
}

// profileSkills resolves a profile name from the locally cached datapack.
// analyze never downloads; run prefetch first.
func profileSkills(cfg *config.Config, name string, log *zap.Logger) ([]string, error) {
	path := filepath.Join(cfg.Cache.Dir, modelcache.DatapackName(cfg.Cache.Locale))
	library, err := skills.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load datapack (run `resume-analyzer prefetch` first): %w", err)
	}
	log.Debug("skills library loaded", zap.String("path", path))

	list, err := library.Profile(name)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(library.Names(), ", "))
	}
	return list, nil
}

func printReport(w io.Writer, report *domain.Report) {
	fmt.Fprintf(w, "Overall score: %d/100\n", report.Scores.Overall)
	fmt.Fprintf(w, "  Skills:   %d\n", report.Scores.Skill)
	fmt.Fprintf(w, "  ATS:      %d\n", report.Scores.ATS)
	fmt.Fprintf(w, "  Sections: %d\n", report.Scores.Sections)
	fmt.Fprintf(w, "  Style:    %d\n", report.Scores.Style)

	fmt.Fprintf(w, "Matched skills: %s\n", joinOrDash(report.MatchedSkills))
	fmt.Fprintf(w, "Missing skills: %s\n", joinOrDash(report.MissingSkills))

	if len(report.FormattingIssues) > 0 {
		fmt.Fprintln(w, "Formatting issues:")
		for _, issue := range report.FormattingIssues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations:")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	if report.AISummary != nil {
		fmt.Fprintf(w, "Summary: %s\n", report.AISummary.Summary)
		fmt.Fprintf(w, "Recommendation: %s\n", report.AISummary.Recommendation)
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
