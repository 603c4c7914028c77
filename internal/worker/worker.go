// Package worker consumes analysis sessions from the queue, scores every
// resume in the session and persists the aggregated results.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/analyzer"
	"github.com/imran601021/Resume/internal/database"
	"github.com/imran601021/Resume/internal/domain"
	"github.com/imran601021/Resume/internal/retry"
	"github.com/imran601021/Resume/internal/telemetry"
)

// Store is the database surface the worker needs.
type Store interface {
	GetResumesBySession(ctx context.Context, sessionID uuid.UUID) ([]database.Resume, error)
	UpdateSessionStatus(ctx context.Context, arg database.UpdateSessionStatusParams) error
	CreateOrUpdateAnalysesResults(ctx context.Context, arg database.CreateOrUpdateAnalysesResultsParams) error
}

// ObjectStore downloads resume bodies. An empty bucket means the default.
type ObjectStore interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// UpdatePublisher broadcasts session status changes.
type UpdatePublisher interface {
	PublishUpdate(update domain.StatusUpdate) error
}

// Summarizer enriches a report with an AI narrative. Optional.
type Summarizer interface {
	Summarize(ctx context.Context, report *domain.Report, jobTitle, jobDescription string) (*domain.Enrichment, error)
}

// SkillSource resolves a skills profile name to a skill list. Optional;
// sessions carrying an explicit skill list never need it.
type SkillSource interface {
	Profile(name string) ([]string, error)
}

type Config struct {
	Store      Store
	Objects    ObjectStore
	Updates    UpdatePublisher
	Engine     *analyzer.Engine
	Skills     SkillSource
	Summarizer Summarizer
	Stats      *telemetry.Collector
	Logger     *zap.Logger
}

type Worker struct {
	store      Store
	objects    ObjectStore
	updates    UpdatePublisher
	engine     *analyzer.Engine
	skills     SkillSource
	summarizer Summarizer
	stats      *telemetry.Collector
	log        *zap.Logger
}

func New(cfg Config) *Worker {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	stats := cfg.Stats
	if stats == nil {
		stats = telemetry.New(false, nil)
	}
	return &Worker{
		store:      cfg.Store,
		objects:    cfg.Objects,
		updates:    cfg.Updates,
		engine:     cfg.Engine,
		skills:     cfg.Skills,
		summarizer: cfg.Summarizer,
		stats:      stats,
		log:        log,
	}
}

// HandleMessage processes one queue delivery. Failures mark the session
// failed; they never panic and never tear the consumer down.
func (w *Worker) HandleMessage(ctx context.Context, body []byte) {
	var session domain.Session
	if err := json.Unmarshal(body, &session); err != nil {
		w.log.Error("error unmarshalling session message", zap.Error(err))
		if session.ID != uuid.Nil {
			w.setStatus(ctx, session.ID, domain.StatusFailed, "analysis failed")
		}
		return
	}

	w.log.Info("processing session", zap.String("session_id", session.ID.String()))
	w.setStatus(ctx, session.ID, domain.StatusProcessing, "analysis started")

	if err := w.processSession(ctx, session); err != nil {
		w.log.Error("session analysis failed",
			zap.String("session_id", session.ID.String()),
			zap.Error(err),
		)
		w.stats.SessionFailed()
		w.setStatus(ctx, session.ID, domain.StatusFailed, "analysis failed")
		return
	}

	w.stats.SessionCompleted()
	w.setStatus(ctx, session.ID, domain.StatusCompleted, "analysis completed")
}

// processSession scores every resume and upserts the aggregated results.
// Per-resume failures become error entries; only session-level problems
// (missing skills, unreachable database) fail the whole session.
func (w *Worker) processSession(ctx context.Context, session domain.Session) error {
	resumes, err := w.store.GetResumesBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("get resumes for session %s: %w", session.ID, err)
	}

	skills, err := w.resolveSkills(session)
	if err != nil {
		return fmt.Errorf("resolve skills: %w", err)
	}

	results := make([]domain.ResumeResult, 0, len(resumes))
	for _, resume := range resumes {
		results = append(results, w.analyzeResume(ctx, session, resume, skills))
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal analyses results: %w", err)
	}

	if _, err := retry.Do(3, func() (any, error) {
		return nil, w.store.CreateOrUpdateAnalysesResults(ctx, database.CreateOrUpdateAnalysesResultsParams{
			Results:   payload,
			SessionID: session.ID,
		})
	}); err != nil {
		return fmt.Errorf("save analyses results: %w", err)
	}
	return nil
}

func (w *Worker) analyzeResume(ctx context.Context, session domain.Session, resume database.Resume, skills []string) domain.ResumeResult {
	result := domain.ResumeResult{
		ResumeID:         resume.ID,
		OriginalFilename: resume.OriginalFilename,
	}

	if resume.Mime != domain.MimeText {
		result.IsErrorResult = true
		result.Error = fmt.Sprintf("unsupported file type: %s", resume.Mime)
		return result
	}

	fileBytes, err := retry.Do(3, func() ([]byte, error) {
		return w.objects.Download(ctx, "", resume.ObjectKey)
	})
	if err != nil {
		w.log.Warn("failed to download resume",
			zap.String("object_key", resume.ObjectKey),
			zap.Error(err),
		)
		result.IsErrorResult = true
		result.Error = fmt.Sprintf("file download error: %v", err)
		return result
	}

	report, err := w.engine.Analyze(analyzer.Input{
		ResumeText:     string(fileBytes),
		JobDescription: session.JobDescription,
		Skills:         skills,
	})
	if err != nil {
		result.IsErrorResult = true
		result.Error = fmt.Sprintf("analysis error: %v", err)
		return result
	}

	if w.summarizer != nil {
		enrichment, err := retry.Do(2, func() (*domain.Enrichment, error) {
			return w.summarizer.Summarize(ctx, report, session.JobTitle, session.JobDescription)
		})
		if err != nil {
			w.log.Warn("summary enrichment failed",
				zap.String("resume_id", resume.ID.String()),
				zap.Error(err),
			)
		} else {
			report.AISummary = enrichment
		}
	}

	w.stats.ResumeAnalyzed()
	result.Report = report
	return result
}

func (w *Worker) resolveSkills(session domain.Session) ([]string, error) {
	if len(session.Skills) > 0 {
		return session.Skills, nil
	}
	if session.SkillsProfile == "" {
		return nil, errors.New("session has no skills and no skills profile")
	}
	if w.skills == nil {
		return nil, fmt.Errorf("skills profile %q requested but no datapack is loaded", session.SkillsProfile)
	}
	return w.skills.Profile(session.SkillsProfile)
}

func (w *Worker) setStatus(ctx context.Context, id uuid.UUID, status, message string) {
	if err := w.store.UpdateSessionStatus(ctx, database.UpdateSessionStatusParams{
		Status: status,
		ID:     id,
	}); err != nil {
		w.log.Warn("failed to update session status",
			zap.String("session_id", id.String()),
			zap.String("status", status),
			zap.Error(err),
		)
	}
	if err := w.updates.PublishUpdate(domain.StatusUpdate{
		SessionID: id,
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		w.log.Warn("failed to publish update", zap.Error(err))
	}
}
