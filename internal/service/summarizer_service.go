// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agentmeet/meeting-agent-service/internal/domain"
	"github.com/agentmeet/meeting-agent-service/internal/domain/models"
	"github.com/agentmeet/meeting-agent-service/internal/logging"
	"github.com/agentmeet/meeting-agent-service/pkg/utils"
)

// summarySystemPrompt instructs the completion model for transcript
// summarization.
const summarySystemPrompt = "You are an expert note taker. Summarize the following meeting " +
	"transcript into a concise summary: cover the topics discussed, the decisions made and " +
	"any action items, in that order. Write in plain prose without preamble."

// SummarizerService turns stored transcripts into meeting summaries. It runs
// as an asynchronous job consumer; completing the summary is what moves a
// meeting from PROCESSING to COMPLETED.
type SummarizerService struct {
	meetingRepo domain.MeetingRepository
	agentRepo   domain.AgentRepository
	fetcher     domain.TranscriptFetcher
	completions domain.CompletionProvider
}

// NewSummarizerService creates a new SummarizerService.
func NewSummarizerService(
	meetingRepo domain.MeetingRepository,
	agentRepo domain.AgentRepository,
	fetcher domain.TranscriptFetcher,
	completions domain.CompletionProvider,
) *SummarizerService {
	return &SummarizerService{
		meetingRepo: meetingRepo,
		agentRepo:   agentRepo,
		fetcher:     fetcher,
		completions: completions,
	}
}

// ServiceReady checks if the service is ready to process jobs.
func (s *SummarizerService) ServiceReady() bool {
	return s.meetingRepo != nil &&
		s.fetcher != nil &&
		s.completions != nil
}

// SummarizeMeeting runs one summarization job. A meeting already COMPLETED is
// a duplicate delivery and is skipped.
func (s *SummarizerService) SummarizeMeeting(ctx context.Context, msg models.SummarizeMeetingMessage) error {
	if msg.MeetingUID == "" {
		return domain.NewValidationError("summarize job does not identify a meeting")
	}
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", msg.MeetingUID))

	meeting, err := s.meetingRepo.Get(ctx, msg.MeetingUID)
	if err != nil {
		return err
	}
	if meeting.Status == models.MeetingStatusCompleted {
		slog.InfoContext(ctx, "meeting already summarized, skipping job")
		return nil
	}

	transcriptURL := msg.TranscriptURL
	if transcriptURL == "" {
		transcriptURL = meeting.TranscriptURL
	}
	if transcriptURL == "" {
		return domain.NewValidationError("meeting has no transcript to summarize")
	}

	items, err := s.fetcher.Fetch(ctx, transcriptURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch transcript", logging.ErrKey, err)
		return err
	}

	summary, err := s.completions.Complete(ctx, domain.CompletionRequest{
		System: summarySystemPrompt,
		Messages: []domain.CompletionMessage{
			{Role: "user", Content: s.formatTranscript(ctx, meeting, items)},
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate summary", logging.ErrKey, err)
		return err
	}

	_, err = s.meetingRepo.UpdateFunc(ctx, msg.MeetingUID, func(meeting *models.Meeting) error {
		now := time.Now().UTC()
		meeting.Summary = summary
		if meeting.Status == models.MeetingStatusProcessing {
			meeting.Status = models.MeetingStatusCompleted
		}
		meeting.UpdatedAt = utils.TimePtr(now)
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "meeting summarized and completed")
	return nil
}

// formatTranscript renders the transcript as one "speaker: text" line per
// utterance, with the agent's speaker ID resolved to its name.
func (s *SummarizerService) formatTranscript(ctx context.Context, meeting *models.Meeting, items []domain.TranscriptItem) string {
	agentName := ""
	if meeting.AgentUID != "" {
		if agent, err := s.agentRepo.Get(ctx, meeting.AgentUID); err == nil {
			agentName = agent.Name
		}
	}

	var b strings.Builder
	for _, item := range items {
		if item.Text == "" {
			continue
		}
		speaker := item.SpeakerID
		if speaker == meeting.AgentUID && agentName != "" {
			speaker = agentName
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, item.Text)
	}
	return b.String()
}
