package models

import "encoding/json"

// MessageType enumerates the extension message protocol between the content
// script and the relay.
type MessageType string

const (
	MessagePing         MessageType = "PING"
	MessageCheckSession MessageType = "CHECK_SESSION"
	MessageLoadBoards   MessageType = "LOAD_BOARDS"
	MessageSaveAd       MessageType = "SAVE_AD"
)

// Message is a request from the extension to the relay.
type Message struct {
	Type MessageType     `json:"type" validate:"required"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MessageResponse is the uniform response envelope. Success is false for both
// hard failures and degraded (fallback) responses; Data is always well-formed
// for the request type so the UI never sees a shapeless reply.
type MessageResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SessionState is the CHECK_SESSION payload.
type SessionState struct {
	Valid bool `json:"valid"`
}

// BoardList is the LOAD_BOARDS payload.
type BoardList struct {
	Boards []Board `json:"boards"`
}

// SaveAdData is the SAVE_AD request payload carried in Message.Data.
type SaveAdData struct {
	AdURL   string   `json:"ad_url"`
	BoardID string   `json:"board_id,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	OrgID   string   `json:"org_id,omitempty"`

	// Card carries detector-extracted fields for DOM-captured ads that have
	// no resolvable URL of their own.
	Card *AdCard `json:"card,omitempty"`
}

// SaveAdResult is the SAVE_AD payload.
type SaveAdResult struct {
	Saved bool        `json:"saved"`
	Asset *SaveResult `json:"asset,omitempty"`
}
