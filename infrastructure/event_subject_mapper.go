package infrastructure

import (
	"fmt"

	"github.com/arm32x/bobux-economy/events"
)

// EventStreamName is the JetStream stream holding every forwarded event
const EventStreamName = "bobux_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "bobux.balance.changed"
	case events.EventTypeVoteChanged:
		return "bobux.vote.changed"
	case events.EventTypeSubscriptionLapsed:
		return "bobux.subscription.lapsed"
	case events.EventTypeRealEstateChanged:
		return "bobux.real_estate.changed"
	default:
		return fmt.Sprintf("bobux.unknown.%s", event.Type())
	}
}

// ForwardedTypes lists the event types sent to NATS
func (m *EventSubjectMapper) ForwardedTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeVoteChanged,
		events.EventTypeSubscriptionLapsed,
		events.EventTypeRealEstateChanged,
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	types := m.ForwardedTypes()
	subjects := make([]string, 0, len(types)+1)
	for _, t := range types {
		subjects = append(subjects, m.MapEventToSubject(typeOnly(t)))
	}
	return append(subjects, "bobux.unknown.*")
}

// typeOnly is an event carrying nothing but its type
type typeOnly events.EventType

func (t typeOnly) Type() events.EventType { return events.EventType(t) }
