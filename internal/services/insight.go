package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	projectrepo "github.com/upskillworks/roadmap-backend/internal/data/repos/project"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
	"github.com/upskillworks/roadmap-backend/internal/platform/openai"
	"github.com/upskillworks/roadmap-backend/internal/platform/speech"
)

// InsightService is the interview post-processing pipeline: it
// transcribes recorded interview audio and extracts structured
// insights with the same LLM gateway the roadmap generator uses. It
// has no versioning; each call stands alone.
type InsightService interface {
	ExtractFromRecordings(ctx context.Context, actorID, projectID uuid.UUID, gcsURIs []string, languageCode string) (*InterviewInsights, error)
}

// InterviewInsights is the declared output shape of the extraction
// call.
type InterviewInsights struct {
	KeyTasks       []string `json:"key_tasks"`
	PainPoints     []string `json:"pain_points"`
	SkillGaps      []string `json:"skill_gaps"`
	ToolingInUse   []string `json:"tooling_in_use"`
	LearnerContext string   `json:"learner_context"`
}

type insightService struct {
	db  *gorm.DB
	log *logger.Logger

	projectRepo projectrepo.ProjectRepo
	transcriber speech.Transcriber
	ai          openai.Client
	quota       QuotaService
	audit       AuditService
}

func NewInsightService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo projectrepo.ProjectRepo,
	transcriber speech.Transcriber,
	ai openai.Client,
	quota QuotaService,
	audit AuditService,
) InsightService {
	return &insightService{
		db:          db,
		log:         baseLog.With("service", "InsightService"),
		projectRepo: projectRepo,
		transcriber: transcriber,
		ai:          ai,
		quota:       quota,
		audit:       audit,
	}
}

const insightSystemPrompt = `ROLE: Analyst post-processing a reskilling diagnostic interview transcript.
TASK: Extract the client's key job tasks, pain points, skill gaps, tools currently in use, and a short learner-context note.
OUTPUT: JSON only, matching the provided schema.`

func insightSchema() map[string]any {
	stringList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key_tasks":       stringList,
			"pain_points":     stringList,
			"skill_gaps":      stringList,
			"tooling_in_use":  stringList,
			"learner_context": map[string]any{"type": "string"},
		},
		"required":             []string{"key_tasks", "pain_points", "skill_gaps", "tooling_in_use", "learner_context"},
		"additionalProperties": false,
	}
}

func (s *insightService) ExtractFromRecordings(ctx context.Context, actorID, projectID uuid.UUID, gcsURIs []string, languageCode string) (*InterviewInsights, error) {
	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project.ConsultantID != actorID {
		return nil, fmt.Errorf("%w: actor is not the project's consultant", pkgerrors.ErrUnauthorized)
	}
	if len(gcsURIs) == 0 {
		return nil, fmt.Errorf("%w: no recordings given", pkgerrors.ErrInvalidArgument)
	}
	if s.transcriber == nil {
		return nil, fmt.Errorf("transcription is not configured")
	}

	if err := s.quota.Check(ctx, actorID); err != nil {
		return nil, err
	}

	// Recordings of one interview are independent parts; transcribe a
	// few at a time and keep their original order.
	transcripts := make([]string, len(gcsURIs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i, uri := range gcsURIs {
		g.Go(func() error {
			text, err := s.transcriber.TranscribeGCS(gctx, uri, languageCode)
			if err != nil {
				return fmt.Errorf("transcribe %q: %w", uri, err)
			}
			transcripts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.audit.Record(ctx, actorID, "interview.extract", "project", projectID, nil, false, err)
		return nil, err
	}

	userPrompt := fmt.Sprintf("PROJECT: %s\nINDUSTRY: %s\n\nTRANSCRIPT:\n%s",
		project.Name, project.Industry, strings.Join(transcripts, "\n---\n"))

	obj, usage, err := s.ai.GenerateJSON(ctx, insightSystemPrompt, userPrompt, "interview_insights", insightSchema())
	s.quota.Record(ctx, actorID, "interview.extract", s.ai.Model(), usage)
	if err != nil {
		s.audit.Record(ctx, actorID, "interview.extract", "project", projectID, nil, false, err)
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrGenerationFailed, err)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var insights InterviewInsights
	if err := json.Unmarshal(raw, &insights); err != nil {
		return nil, fmt.Errorf("%w: decode insights: %v", pkgerrors.ErrGenerationFailed, err)
	}

	s.audit.Record(ctx, actorID, "interview.extract", "project", projectID, map[string]any{
		"recordings": len(gcsURIs),
	}, true, nil)
	return &insights, nil
}
