// Package server is the gin HTTP layer: session creation, resume upload,
// analysis start/status/results and the synchronous analyze endpoint.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imran601021/Resume/internal/analyzer"
	"github.com/imran601021/Resume/internal/domain"
	"github.com/imran601021/Resume/internal/service"
)

// SessionAPI is the service surface the handlers consume.
type SessionAPI interface {
	CreateSession(ctx context.Context, in service.CreateSessionInput) (domain.Session, error)
	AttachResume(ctx context.Context, sessionID uuid.UUID, filename, contentType string, body []byte) (domain.Resume, error)
	StartAnalysis(ctx context.Context, sessionID uuid.UUID) (domain.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (domain.Session, error)
	GetResults(ctx context.Context, sessionID uuid.UUID) (domain.SessionResults, error)
	Analyze(in analyzer.Input) (*domain.Report, error)
}

type Handler struct {
	svc     SessionAPI
	log     *zap.Logger
	started time.Time
}

func NewHandler(svc SessionAPI, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:     svc,
		log:     log,
		started: time.Now(),
	}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/analyze", h.Analyze)
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:id", h.GetSession)
		api.POST("/sessions/:id/resumes", h.UploadResume)
		api.POST("/sessions/:id/analyze", h.StartAnalysis)
		api.GET("/sessions/:id/results", h.GetResults)
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *Handler) CreateSession(c *gin.Context) {
	var in service.CreateSessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	session, err := h.svc.CreateSession(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *Handler) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.svc.GetSession(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// UploadResume takes the resume as a raw text/plain body. The filename is
// optional metadata passed as a query parameter.
func (h *Handler) UploadResume(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, service.MaxResumeBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) > service.MaxResumeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "resume body exceeds the 1 MiB limit"})
		return
	}

	resume, err := h.svc.AttachResume(c.Request.Context(), id, c.Query("filename"), c.ContentType(), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"resume": resume})
}

func (h *Handler) StartAnalysis(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.svc.StartAnalysis(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"session": session})
}

func (h *Handler) GetResults(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	results, err := h.svc.GetResults(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type analyzeRequest struct {
	ResumeText     string   `json:"resume_text"`
	JobDescription string   `json:"job_description"`
	Skills         []string `json:"skills"`
}

// Analyze scores one resume synchronously without touching the database,
// the queue or object storage.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	report, err := h.svc.Analyze(analyzer.Input{
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
		Skills:         req.Skills,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id must be a valid uuid"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors to status codes. Unexpected errors are
// logged and answered with an opaque 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnsupportedMedia):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoResumes):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
