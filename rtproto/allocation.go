package rtproto

import "github.com/google/uuid"

// AllocateEventType and DeallocateEventType are the literal EventType
// values carried by allocation lifecycle publications on the per-server
// channel. A publication whose EventType doesn't match one of these is
// rejected without mutating allocation state.
const (
	AllocateEventType   = "AllocateEventType"
	DeallocateEventType = "DeallocateEventType"
)

// AllocateEvent is the application-level payload of a Publication that
// assigns a match/session to this server instance.
type AllocateEvent struct {
	EventID      uuid.UUID `json:"EventID"`
	EventType    string    `json:"EventType"`
	ServerID     int64     `json:"ServerID"`
	AllocationID uuid.UUID `json:"AllocationID"`
}

// DeallocateEvent is the application-level payload of a Publication that
// releases this server instance's current allocation.
type DeallocateEvent struct {
	EventID      uuid.UUID `json:"EventID"`
	EventType    string    `json:"EventType"`
	ServerID     int64     `json:"ServerID"`
	AllocationID uuid.UUID `json:"AllocationID"`
}
