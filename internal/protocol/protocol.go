// Package protocol defines the typed messages pushed to WebSocket
// subscribers of the control API.
package protocol

// MessageType defines the type of a pushed message.
type MessageType string

const (
	// TypeClick is pushed after each injected click.
	TypeClick MessageType = "click"

	// TypeState is pushed on every engine state transition.
	TypeState MessageType = "state"

	// TypeProgress is pushed after each played pattern step.
	TypeProgress MessageType = "progress"

	// TypeRate is pushed with fresh throughput figures.
	TypeRate MessageType = "rate"
)

// Message is the generic container for all pushed messages.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// StatePayload is the payload for TypeState.
type StatePayload struct {
	State string `json:"state"`
}

// ProgressPayload is the payload for TypeProgress.
type ProgressPayload struct {
	CurrentStep int `json:"current_step"`
	TotalSteps  int `json:"total_steps"`
}

// RatePayload is the payload for TypeRate.
type RatePayload struct {
	TargetRate    float64 `json:"target_rate"`
	ActualRate    float64 `json:"actual_rate"`
	PeakRate      float64 `json:"peak_rate"`
	Accuracy      float64 `json:"accuracy"`
	ResourceGauge int     `json:"resource_gauge"`
}

// ClickPayload is the payload for TypeClick.
type ClickPayload struct {
	SessionClicks int64 `json:"session_clicks"`
}
