// Package agent produces the optional AI narrative attached to reports.
// It is only constructed when GOOGLE_API_KEY is set; the scoring engine
// never depends on it.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/imran601021/Resume/internal/domain"
)

const DefaultModel = "gemini-2.5-pro"

const agentName = "resume summarizer"

// Summarizer turns a computed match report into a short narrative summary
// and recommendation.
type Summarizer struct {
	runner   *runner.Runner
	sessions session.Service
	log      *zap.Logger
}

func New(ctx context.Context, apiKey, modelName string, log *zap.Logger) (*Summarizer, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}

	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	llm, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Summarize resume match reports",
		Instruction: prompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        llm.Name(),
		Agent:          llm,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &Summarizer{runner: r, sessions: sessions, log: log}, nil
}

// Summarize streams one agent turn and parses the strict-JSON reply. The
// report's scores are inputs here, never outputs.
func (s *Summarizer) Summarize(ctx context.Context, report *domain.Report, jobTitle, jobDescription string) (*domain.Enrichment, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	agentSession, err := s.sessions.Create(ctx, &session.CreateRequest{
		AppName:   agentName,
		UserID:    "worker",
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("create agent session: %w", err)
	}
	defer func() {
		if derr := s.sessions.Delete(ctx, &session.DeleteRequest{
			AppName:   agentSession.Session.AppName(),
			UserID:    agentSession.Session.UserID(),
			SessionID: agentSession.Session.ID(),
		}); derr != nil {
			s.log.Warn("failed to delete agent session", zap.Error(derr))
		}
	}()

	msg := fmt.Sprintf(
		"Job Title:\n%s\n\nJob Description:\n%s\n\nMatch Report:\n%s",
		jobTitle,
		jobDescription,
		reportJSON,
	)

	stream := s.runner.Run(ctx, agentSession.Session.UserID(), agentSession.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: msg},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return nil, err
		}
		if event != nil && event.IsFinalResponse() && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	if strings.TrimSpace(output) == "" {
		return nil, errors.New("empty agent response")
	}

	var enrichment domain.Enrichment
	if err := json.Unmarshal([]byte(CleanJSON(output)), &enrichment); err != nil {
		return nil, fmt.Errorf("parse agent response: %w", err)
	}
	return &enrichment, nil
}
