// Package domain holds the analysis domain types shared by the API, the
// worker pool and the scoring engine.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session status lifecycle. Transitions are persisted and published on the
// updates exchange: queued -> processing -> completed | failed.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// MimeText is the only resume MIME type the service accepts. Document
// parsing (PDF/DOCX) is out of scope; resumes arrive as extracted text.
const MimeText = "text/plain"

type Session struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Name           string    `json:"name"`
	UserID         uuid.UUID `json:"user_id"`
	Status         string    `json:"status"`
	JobTitle       string    `json:"job_title"`
	JobDescription string    `json:"job_description"`
	Skills         []string  `json:"skills"`
	SkillsProfile  string    `json:"skills_profile,omitempty"`
}

type Resume struct {
	ID               uuid.UUID `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	Mime             string    `json:"mime"`
	SizeBytes        int64     `json:"size_bytes"`
	StorageProvider  string    `json:"storage_provider"`
	ObjectKey        string    `json:"object_key"`
	StorageUrl       string    `json:"storage_url"`
	UploadStatus     string    `json:"upload_status"`
	CreatedAt        time.Time `json:"created_at"`
	SessionID        uuid.UUID `json:"session_id"`
}

// Scores are the report axes, each 0-100.
type Scores struct {
	Overall  int `json:"overall_score"`
	Skill    int `json:"skill_score"`
	ATS      int `json:"ats_score"`
	Style    int `json:"style_score"`
	Sections int `json:"section_score"`
}

// Enrichment is the optional AI-written narrative attached to a report when
// the summarizer agent is configured.
type Enrichment struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// Report is the outcome of analyzing one resume against a job description.
type Report struct {
	Scores           Scores      `json:"scores"`
	MatchedSkills    []string    `json:"matched_skills"`
	MissingSkills    []string    `json:"missing_skills"`
	FormattingIssues []string    `json:"formatting_issues"`
	Recommendations  []string    `json:"recommendations"`
	AISummary        *Enrichment `json:"ai_summary,omitempty"`
}

// ResumeResult wraps one resume's report inside a session. Failures become
// error result entries instead of failing the whole session.
type ResumeResult struct {
	ResumeID         uuid.UUID `json:"resume_id"`
	OriginalFilename string    `json:"original_filename"`
	Report           *Report   `json:"report,omitempty"`
	IsErrorResult    bool      `json:"is_error_result"`
	Error            string    `json:"error,omitempty"`
}

type SessionResults struct {
	ID        uuid.UUID      `json:"id"`
	Results   []ResumeResult `json:"results"`
	CreatedAt time.Time      `json:"created_at"`
	SessionID uuid.UUID      `json:"session_id"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StatusUpdate is published to the session updates exchange with routing key
// "session.<id>".
type StatusUpdate struct {
	SessionID uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
