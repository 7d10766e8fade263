package ws

import (
	"github.com/airsplit/airsplit/internal/run"
)

type MessageType string

const (
	MsgSnapshot MessageType = "snapshot"
	MsgStatus   MessageType = "status"
	MsgEvent    MessageType = "event"
	MsgError    MessageType = "error"
)

type WSMessage struct {
	Type    MessageType `json:"type"`
	Seq     uint64      `json:"seq"`
	Payload interface{} `json:"payload"`
}

type SnapshotPayload struct {
	Status *run.Status `json:"status"`
	Events []run.Event `json:"events"`
}

type StatusPayload struct {
	Status *run.Status `json:"status"`
}

type EventPayload struct {
	Event run.Event `json:"event"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
