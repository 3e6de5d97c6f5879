// Package protocol defines the JSON bodies exchanged with control clients.
package protocol

import (
	"encoding/json"

	"remotemouse/internal/airmouse"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to host control events, same bodies as the REST endpoints
	TypeAirMouse  MessageType = "airmouse"
	TypeTouchpad  MessageType = "touchpad"
	TypeKeyAction MessageType = "key_action"
	TypeHotkey    MessageType = "hotkey"

	// TypeError answers a rejected message
	TypeError MessageType = "error"

	// TypeSession is broadcast when the session is bound or released
	TypeSession MessageType = "session"

	// TypeSettings is broadcast after the tunables change
	TypeSettings MessageType = "settings"
)

// Message is the generic container for all WebSocket messages
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage encodes payload into a message of the given type
func NewMessage(t MessageType, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}

// AirMouseRequest is the body of POST /api/airmouse
type AirMouseRequest struct {
	Active      bool             `json:"active"`
	Orientation *airmouse.Sample `json:"orientation,omitempty"`
}

// Touchpad actions
const (
	ActionMove       = "move"
	ActionLeftClick  = "left_click"
	ActionRightClick = "right_click"
	ActionScroll     = "scroll"
)

// TouchpadRequest is the body of POST /api/touchpad
type TouchpadRequest struct {
	Action string  `json:"action"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
}

// KeyActionRequest is the body of POST /api/key_action
type KeyActionRequest struct {
	Key string `json:"key"`
}

// HotkeyRequest is the body of POST /api/hotkey
type HotkeyRequest struct {
	Keys []string `json:"keys"`
}

// StatusResponse is returned by the ok path of every control endpoint
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorPayload is the body of an error response or TypeError message
type ErrorPayload struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	RemainingSeconds *float64 `json:"remaining_seconds,omitempty"`
}

// SessionPayload is the payload of TypeSession and GET /api/status
type SessionPayload struct {
	Connected                bool    `json:"connected"`
	SessionID                string  `json:"session_id,omitempty"`
	OriginIsYou              bool    `json:"origin_is_you"`
	CooldownRemainingSeconds float64 `json:"cooldown_remaining_seconds"`
}

// SettingsResponse is returned by POST /api/settings
type SettingsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	NewPort *int   `json:"new_port"`
}
