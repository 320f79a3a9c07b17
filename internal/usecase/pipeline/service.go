package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/internal/domain/entities"
	"github.com/johnquangdev/meeting-agent/internal/domain/repositories"
	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/openai"
	"github.com/johnquangdev/meeting-agent/pkg/workflow"
)

// Step names double as checkpoint keys.
const (
	StepFetchTranscript   = "fetch-transcript"
	StepParseTranscript   = "parse-transcript"
	StepAddSpeakers       = "add-speakers"
	StepArchiveTranscript = "archive-transcript"
	StepSummarize         = "summarize"
	StepSaveSummary       = "save-summary"
)

// SummarizerSystemPrompt fixes the shape of every summary
const SummarizerSystemPrompt = `You are an expert summarizer. You write readable, concise, simple content. You are given a transcript of a meeting and you need to summarize it.

Use the following markdown structure for every output:

### Overview
Provide a detailed, engaging summary of the session's content. Focus on major features, user workflows, and any key takeaways. Write in a narrative style, using full sentences. Highlight unique or powerful aspects of the product, platform, or discussion.

### Notes
Break down key content into thematic sections with timestamp ranges. Each section should summarize key points, actions, or demos in bullet format.

Example:
#### Section Name
- Main point or demo shown here
- Another key insight or interaction
- Follow-up tool or explanation provided

#### Next Section
- Feature X automatically does Y
- Mention of integration with Z`

const summarizePrefix = "summarize the following transcript: "

// ErrUnsupportedEvent is returned for work items the processor does not handle
var ErrUnsupportedEvent = errors.New("unsupported work item event")

// Completer produces chat completions
type Completer interface {
	Complete(ctx context.Context, req openai.ChatRequest) (string, error)
}

// Archiver stores a copy of the enriched transcript
type Archiver interface {
	ArchiveTranscript(ctx context.Context, meetingID string, raw []byte) (string, error)
}

// Processor runs the transcript post-processing job for one work item
type Processor struct {
	meetings    repositories.MeetingRepository
	users       repositories.UserRepository
	agents      repositories.AgentRepository
	fetcher     Fetcher
	completer   Completer
	archiver    Archiver
	runner      *workflow.Runner
	model       string
	temperature float64
	logger      *zap.Logger
}

// NewProcessor creates a new processor
func NewProcessor(
	meetings repositories.MeetingRepository,
	users repositories.UserRepository,
	agents repositories.AgentRepository,
	fetcher Fetcher,
	completer Completer,
	runner *workflow.Runner,
	cfg *config.OpenAIConfig,
	logger *zap.Logger,
) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		meetings:    meetings,
		users:       users,
		agents:      agents,
		fetcher:     fetcher,
		completer:   completer,
		runner:      runner,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// WithArchiver enables the archive-transcript step
func (p *Processor) WithArchiver(a Archiver) *Processor {
	p.archiver = a
	return p
}

// Process runs every step for item. Steps already completed for the item's
// id are replayed from their checkpoints instead of being executed again.
func (p *Processor) Process(ctx context.Context, item entities.WorkItem) error {
	if item.EventName != entities.EventMeetingProcessing {
		return &workflow.StepError{Step: "dispatch", Err: fmt.Errorf("%w: %s", ErrUnsupportedEvent, item.EventName), Permanent: true}
	}

	data := item.Data
	exec := p.runner.Begin(item.ID)
	log := p.logger.With(
		zap.String("job_id", item.ID),
		zap.String("meeting_id", data.MeetingID),
	)

	raw, err := workflow.Step(ctx, exec, StepFetchTranscript, func(ctx context.Context) (string, error) {
		return p.fetcher.Fetch(ctx, data.TranscriptURL)
	})
	if err != nil {
		return err
	}

	transcript, err := workflow.Step(ctx, exec, StepParseTranscript, func(ctx context.Context) ([]entities.TranscriptItem, error) {
		items, err := ParseJSONL(raw)
		if err != nil {
			return nil, workflow.Permanent(err)
		}
		return items, nil
	})
	if err != nil {
		return err
	}

	enriched, err := workflow.Step(ctx, exec, StepAddSpeakers, func(ctx context.Context) ([]entities.EnrichedTranscriptItem, error) {
		return p.addSpeakers(ctx, transcript)
	})
	if err != nil {
		return err
	}

	if p.archiver != nil {
		p.archive(ctx, exec, log, data.MeetingID, enriched)
	}

	summary, err := workflow.Step(ctx, exec, StepSummarize, func(ctx context.Context) (string, error) {
		return p.summarize(ctx, enriched)
	})
	if err != nil {
		return err
	}

	_, err = workflow.Step(ctx, exec, StepSaveSummary, func(ctx context.Context) (bool, error) {
		if err := p.meetings.SaveSummary(ctx, data.MeetingID, summary); err != nil {
			if errors.Is(err, entities.ErrMeetingNotFound) {
				return false, workflow.Permanent(err)
			}
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	log.Info("pipeline.job.completed",
		zap.Int("transcript_items", len(transcript)),
		zap.Int("summary_length", len(summary)),
	)
	return nil
}

func (p *Processor) addSpeakers(ctx context.Context, transcript []entities.TranscriptItem) ([]entities.EnrichedTranscriptItem, error) {
	ids := SpeakerIDs(transcript)
	if len(ids) == 0 {
		return Enrich(transcript, nil, nil), nil
	}

	users, err := p.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load speaker users: %w", err)
	}
	agents, err := p.agents.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load speaker agents: %w", err)
	}

	return Enrich(transcript, users, agents), nil
}

// archive uploads the enriched transcript. Failures are logged and the job carries on.
func (p *Processor) archive(ctx context.Context, exec *workflow.Execution, log *zap.Logger, meetingID string, enriched []entities.EnrichedTranscriptItem) {
	objectName, err := workflow.Step(ctx, exec, StepArchiveTranscript, func(ctx context.Context) (string, error) {
		payload, err := EncodeJSONL(enriched)
		if err != nil {
			return "", workflow.Permanent(err)
		}
		return p.archiver.ArchiveTranscript(ctx, meetingID, payload)
	})
	if err != nil {
		log.Warn("pipeline.archive.failed", zap.Error(err))
		return
	}
	log.Debug("pipeline.archive.stored", zap.String("object", objectName))
}

func (p *Processor) summarize(ctx context.Context, enriched []entities.EnrichedTranscriptItem) (string, error) {
	payload, err := json.Marshal(enriched)
	if err != nil {
		return "", workflow.Permanent(fmt.Errorf("encode transcript: %w", err))
	}

	summary, err := p.completer.Complete(ctx, openai.ChatRequest{
		Model: p.model,
		Messages: []openai.Message{
			{Role: "system", Content: SummarizerSystemPrompt},
			{Role: "user", Content: summarizePrefix + string(payload)},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		var statusErr *openai.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
			statusErr.StatusCode != 429 {
			return "", workflow.Permanent(err)
		}
		return "", err
	}
	return summary, nil
}
