// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package models

import "strings"

// EventKind enumerates the call-provider webhook events this service knows
// about. Keeping the set closed (with an explicit unrecognized member) makes
// handler dispatch an exhaustiveness concern instead of an open string switch.
type EventKind int

const (
	EventKindUnrecognized EventKind = iota
	EventKindSessionStarted
	EventKindParticipantLeft
	EventKindSessionEnded
	EventKindTranscriptionReady
	EventKindRecordingReady
	EventKindChatMessage
)

// Wire-format event type strings sent by the call provider.
const (
	EventTypeSessionStarted     = "call.session_started"
	EventTypeParticipantLeft    = "call.session_participant_left"
	EventTypeSessionEnded       = "call.session_ended"
	EventTypeTranscriptionReady = "call.transcription_ready"
	EventTypeRecordingReady     = "call.recording_ready"
	EventTypeChatMessage        = "message.new"
)

// ParseEventKind maps a wire event type to its kind. Unknown types map to
// EventKindUnrecognized; callers accept those and ignore them so the provider
// does not retry indefinitely.
func ParseEventKind(eventType string) EventKind {
	switch eventType {
	case EventTypeSessionStarted:
		return EventKindSessionStarted
	case EventTypeParticipantLeft:
		return EventKindParticipantLeft
	case EventTypeSessionEnded:
		return EventKindSessionEnded
	case EventTypeTranscriptionReady:
		return EventKindTranscriptionReady
	case EventTypeRecordingReady:
		return EventKindRecordingReady
	case EventTypeChatMessage:
		return EventKindChatMessage
	}
	return EventKindUnrecognized
}

// String returns the wire event type for the kind.
func (k EventKind) String() string {
	switch k {
	case EventKindSessionStarted:
		return EventTypeSessionStarted
	case EventKindParticipantLeft:
		return EventTypeParticipantLeft
	case EventKindSessionEnded:
		return EventTypeSessionEnded
	case EventKindTranscriptionReady:
		return EventTypeTranscriptionReady
	case EventKindRecordingReady:
		return EventTypeRecordingReady
	case EventKindChatMessage:
		return EventTypeChatMessage
	}
	return "unrecognized"
}

// CallRef identifies the call object in event payloads.
type CallRef struct {
	ID     string            `json:"id" mapstructure:"id"`
	Custom map[string]string `json:"custom,omitempty" mapstructure:"custom"`
}

// MeetingUID returns the meeting UID embedded in the call's custom data.
func (c *CallRef) MeetingUID() string {
	if c == nil {
		return ""
	}
	return c.Custom["meeting_uid"]
}

// MeetingUIDFromCallCID extracts the meeting UID from a "type:id" call CID.
func MeetingUIDFromCallCID(callCID string) string {
	_, id, found := strings.Cut(callCID, ":")
	if !found {
		return ""
	}
	return id
}

// SessionStartedPayload is the payload of call.session_started events.
type SessionStartedPayload struct {
	Call CallRef `json:"call" mapstructure:"call"`
}

// ParticipantLeftPayload is the payload of call.session_participant_left events.
type ParticipantLeftPayload struct {
	CallCID     string `json:"call_cid" mapstructure:"call_cid"`
	Participant struct {
		UserID string `json:"user_id" mapstructure:"user_id"`
	} `json:"participant" mapstructure:"participant"`
}

// SessionEndedPayload is the payload of call.session_ended events.
type SessionEndedPayload struct {
	Call CallRef `json:"call" mapstructure:"call"`
}

// TranscriptionReadyPayload is the payload of call.transcription_ready events.
type TranscriptionReadyPayload struct {
	CallCID           string `json:"call_cid" mapstructure:"call_cid"`
	CallTranscription struct {
		URL string `json:"url" mapstructure:"url"`
	} `json:"call_transcription" mapstructure:"call_transcription"`
}

// RecordingReadyPayload is the payload of call.recording_ready events.
type RecordingReadyPayload struct {
	CallCID       string `json:"call_cid" mapstructure:"call_cid"`
	CallRecording struct {
		URL string `json:"url" mapstructure:"url"`
	} `json:"call_recording" mapstructure:"call_recording"`
}

// ChatMessagePayload is the payload of message.new chat events. The channel
// ID equals the meeting UID.
type ChatMessagePayload struct {
	ChannelID string `json:"channel_id" mapstructure:"channel_id"`
	User      struct {
		ID string `json:"id" mapstructure:"id"`
	} `json:"user" mapstructure:"user"`
	Message struct {
		Text string `json:"text" mapstructure:"text"`
	} `json:"message" mapstructure:"message"`
}
