package ports

import "context"

const (
	EventInspectionCreated = "inspection.created"
	EventInspectionDerived = "inspection.derived"
	EventDefectRecorded    = "defect.recorded"
)

// EventPublisher delivers domain events after their transaction committed.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any) error
}
