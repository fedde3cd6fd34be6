package types

// ClientCommand is the envelope for every JSON control message from the client.
// Binary frames carry raw utterance audio and never use this structure.
type ClientCommand struct {
	Type    string        `json:"type"`
	VoiceID string        `json:"voice_id,omitempty"`
	Context *IntroContext `json:"context,omitempty"`
}

// IntroContext carries the lesson framing supplied once via set_context.
type IntroContext struct {
	CompanionName string `json:"companionName"`
	Subject       string `json:"subject"`
	UnitTitle     string `json:"unitTitle"`
	UnitContent   string `json:"unitContent"`
	Style         string `json:"style"`
	Topic         string `json:"topic"`
}

type ConnectionEstablished struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// Event is a bare server-side marker: processing_start, no_speech_detected,
// audio_start, audio_end, pong.
type Event struct {
	Type string `json:"type"`
}

// TextMessage delivers transcript and ai_response payloads.
type TextMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type VoiceChanged struct {
	Type      string `json:"type"`
	VoiceID   string `json:"voice_id"`
	VoiceName string `json:"voice_name"`
	Language  string `json:"language"`
	Quality   string `json:"quality"`
	Cost      string `json:"cost"`
	Message   string `json:"message"`
}

type ContextSet struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
