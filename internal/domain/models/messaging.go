// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package models

// NATS subjects for call-provider webhook events. The HTTP endpoint
// publishes to these after the signature and existence checks pass; the
// queue-subscribed webhook handlers apply the lifecycle transitions.
const (
	WebhookSessionStartedSubject     = "agentmeet.webhook.call.session_started"
	WebhookParticipantLeftSubject    = "agentmeet.webhook.call.participant_left"
	WebhookSessionEndedSubject       = "agentmeet.webhook.call.session_ended"
	WebhookTranscriptionReadySubject = "agentmeet.webhook.call.transcription_ready"
	WebhookRecordingReadySubject     = "agentmeet.webhook.call.recording_ready"
	WebhookChatMessageSubject        = "agentmeet.webhook.chat.message"
)

// MeetingSummarizeSubject is the queue subject for asynchronous meeting
// summarization jobs. The webhook processor enqueues and forgets; retry is
// the queue's concern.
const MeetingSummarizeSubject = "agentmeet.meetings.summarize"

// MeetingServiceQueue is the NATS queue group name so that only one instance
// of the service handles a given message.
const MeetingServiceQueue = "agentmeet-meeting-service"

// WebhookEventMessage is the NATS message envelope for a provider webhook
// event that passed the HTTP-level checks.
type WebhookEventMessage struct {
	EventType string         `json:"event_type"`
	EventTS   int64          `json:"event_ts"`
	Payload   map[string]any `json:"payload"`
}

// SummarizeMeetingMessage is the payload of a meeting summarization job.
type SummarizeMeetingMessage struct {
	MeetingUID    string `json:"meeting_uid"`
	TranscriptURL string `json:"transcript_url"`
}
