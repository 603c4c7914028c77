// Package service orchestrates the session workflow for the HTTP API:
// persistence, object storage, queue publication and synchronous analysis.
package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/analyzer"
	"github.com/imran601021/Resume/internal/database"
	"github.com/imran601021/Resume/internal/domain"
	"github.com/imran601021/Resume/internal/telemetry"
)

// MaxResumeBytes caps uploaded resume bodies. Plain-text resumes are tiny;
// anything bigger is almost certainly a mis-uploaded binary.
const MaxResumeBytes = 1 << 20

var (
	ErrInvalid          = errors.New("invalid request")
	ErrNotFound         = errors.New("not found")
	ErrUnsupportedMedia = errors.New("unsupported media type: only text/plain resumes are accepted")
	ErrNoResumes        = errors.New("session has no uploaded resumes")
)

// Store is the database surface the service needs.
type Store interface {
	CreateSession(ctx context.Context, arg database.CreateSessionParams) (database.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (database.Session, error)
	CreateResume(ctx context.Context, arg database.CreateResumeParams) (database.Resume, error)
	GetResumesBySession(ctx context.Context, sessionID uuid.UUID) ([]database.Resume, error)
	GetAnalysesResultsBySession(ctx context.Context, sessionID uuid.UUID) (database.AnalysesResult, error)
}

// ObjectStore uploads resume bodies.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	URL(key string) string
}

// SessionPublisher hands sessions to the worker pool.
type SessionPublisher interface {
	PublishSession(session domain.Session) error
}

type SessionService struct {
	db      Store
	objects ObjectStore
	queue   SessionPublisher
	engine  *analyzer.Engine
	stats   *telemetry.Collector
	log     *zap.Logger
}

func NewSessionService(db Store, objects ObjectStore, publisher SessionPublisher, engine *analyzer.Engine, stats *telemetry.Collector, log *zap.Logger) *SessionService {
	if stats == nil {
		stats = telemetry.New(false, nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		db:      db,
		objects: objects,
		queue:   publisher,
		engine:  engine,
		stats:   stats,
		log:     log,
	}
}

type CreateSessionInput struct {
	Name           string   `json:"name"`
	UserID         string   `json:"user_id"`
	JobTitle       string   `json:"job_title"`
	JobDescription string   `json:"job_description"`
	Skills         []string `json:"skills"`
	SkillsProfile  string   `json:"skills_profile"`
}

// CreateSession validates and stores a new session in status queued. The
// session is not published yet; resumes are attached first and analysis is
// started explicitly.
func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (domain.Session, error) {
	userID, err := uuid.Parse(strings.TrimSpace(in.UserID))
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: user_id must be a valid uuid", ErrInvalid)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Session{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return domain.Session{}, fmt.Errorf("%w: job_description is required", ErrInvalid)
	}
	if len(in.Skills) == 0 && strings.TrimSpace(in.SkillsProfile) == "" {
		return domain.Session{}, fmt.Errorf("%w: either skills or skills_profile is required", ErrInvalid)
	}

	skills := in.Skills
	if skills == nil {
		skills = []string{}
	}

	row, err := s.db.CreateSession(ctx, database.CreateSessionParams{
		ID:             uuid.New(),
		Name:           name,
		UserID:         userID,
		Status:         domain.StatusQueued,
		JobTitle:       strings.TrimSpace(in.JobTitle),
		JobDescription: in.JobDescription,
		Skills:         skills,
		SkillsProfile:  strings.TrimSpace(in.SkillsProfile),
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	s.log.Info("session created",
		zap.String("session_id", row.ID.String()),
		zap.String("name", row.Name),
	)
	return toDomainSession(row), nil
}

// AttachResume uploads a plain-text resume body to object storage and
// records the row. Any other media type is rejected: document parsing is
// out of scope here, resumes arrive as already-extracted text.
func (s *SessionService) AttachResume(ctx context.Context, sessionID uuid.UUID, filename, contentType string, body []byte) (domain.Resume, error) {
	if mediaType(contentType) != domain.MimeText {
		return domain.Resume{}, ErrUnsupportedMedia
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.Resume{}, fmt.Errorf("%w: resume body is empty", ErrInvalid)
	}
	if len(body) > MaxResumeBytes {
		return domain.Resume{}, fmt.Errorf("%w: resume body exceeds %d bytes", ErrInvalid, MaxResumeBytes)
	}

	session, err := s.db.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Resume{}, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		return domain.Resume{}, fmt.Errorf("get session: %w", err)
	}

	id := uuid.New()
	key := fmt.Sprintf("resumes/%s/%s.txt", session.ID, id)
	if err := s.objects.Upload(ctx, key, body, domain.MimeText); err != nil {
		return domain.Resume{}, fmt.Errorf("upload resume: %w", err)
	}

	name := strings.TrimSpace(filename)
	if name == "" {
		name = "resume.txt"
	}
	row, err := s.db.CreateResume(ctx, database.CreateResumeParams{
		ID:               id,
		OriginalFilename: name,
		Mime:             domain.MimeText,
		SizeBytes:        int64(len(body)),
		StorageProvider:  "r2",
		ObjectKey:        key,
		StorageUrl:       s.objects.URL(key),
		UploadStatus:     "uploaded",
		SessionID:        session.ID,
	})
	if err != nil {
		return domain.Resume{}, fmt.Errorf("create resume: %w", err)
	}
	return toDomainResume(row), nil
}

// StartAnalysis publishes the session to the work queue. At least one
// resume must be attached first.
func (s *SessionService) StartAnalysis(ctx context.Context, sessionID uuid.UUID) (domain.Session, error) {
	row, err := s.db.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	resumes, err := s.db.GetResumesBySession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("get resumes: %w", err)
	}
	if len(resumes) == 0 {
		return domain.Session{}, ErrNoResumes
	}

	session := toDomainSession(row)
	if err := s.queue.PublishSession(session); err != nil {
		return domain.Session{}, fmt.Errorf("enqueue session: %w", err)
	}
	s.log.Info("session enqueued",
		zap.String("session_id", session.ID.String()),
		zap.Int("resumes", len(resumes)),
	)
	return session, nil
}

func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	row, err := s.db.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, fmt.Errorf("%w: session %s", ErrNotFound, id)
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	return toDomainSession(row), nil
}

func (s *SessionService) GetResults(ctx context.Context, sessionID uuid.UUID) (domain.SessionResults, error) {
	row, err := s.db.GetAnalysesResultsBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SessionResults{}, fmt.Errorf("%w: no results for session %s", ErrNotFound, sessionID)
		}
		return domain.SessionResults{}, fmt.Errorf("get results: %w", err)
	}

	results := []domain.ResumeResult{}
	if err := json.Unmarshal(row.Results, &results); err != nil {
		return domain.SessionResults{}, fmt.Errorf("decode stored results: %w", err)
	}
	return domain.SessionResults{
		ID:        row.ID,
		Results:   results,
		CreatedAt: row.CreatedAt,
		SessionID: row.SessionID,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Analyze scores one resume synchronously without persisting anything.
func (s *SessionService) Analyze(in analyzer.Input) (*domain.Report, error) {
	report, err := s.engine.Analyze(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	s.stats.SyncAnalysis()
	return report, nil
}

// mediaType strips parameters like "; charset=utf-8" from a Content-Type.
func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func toDomainSession(row database.Session) domain.Session {
	skills := row.Skills
	if skills == nil {
		skills = []string{}
	}
	return domain.Session{
		ID:             row.ID,
		CreatedAt:      row.CreatedAt,
		Name:           row.Name,
		UserID:         row.UserID,
		Status:         row.Status,
		JobTitle:       row.JobTitle,
		JobDescription: row.JobDescription,
		Skills:         skills,
		SkillsProfile:  row.SkillsProfile,
	}
}

func toDomainResume(row database.Resume) domain.Resume {
	return domain.Resume{
		ID:               row.ID,
		OriginalFilename: row.OriginalFilename,
		Mime:             row.Mime,
		SizeBytes:        row.SizeBytes,
		StorageProvider:  row.StorageProvider,
		ObjectKey:        row.ObjectKey,
		StorageUrl:       row.StorageUrl,
		UploadStatus:     row.UploadStatus,
		CreatedAt:        row.CreatedAt,
		SessionID:        row.SessionID,
	}
}
