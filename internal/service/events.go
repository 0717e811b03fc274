package service

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"printfee/api/internal/model"
)

// Event subjects
const (
	SubjectCalculated     = "printfee.billing.calculated"
	SubjectHistoryCleared = "printfee.history.cleared"
)

// EventService publishes billing events to NATS. It is optional: with no
// NATS connection configured every publish is a no-op, so downstream
// consumers (bookkeeping sync, notifications) can be attached later
// without touching the billing path.
type EventService struct {
	nc *nats.Conn
}

// NewEventService creates a new event service
func NewEventService(nc *nats.Conn) *EventService {
	return &EventService{nc: nc}
}

// Enabled reports whether events are being published
func (s *EventService) Enabled() bool {
	return s != nil && s.nc != nil
}

// PublishCalculated announces a persisted billing record. Best effort:
// a publish failure is logged, never surfaced to the caller.
func (s *EventService) PublishCalculated(rec *model.BillingRecord) {
	if !s.Enabled() {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		log.Printf("[Events] marshal billing record failed: %v", err)
		return
	}
	if err := s.nc.Publish(SubjectCalculated, payload); err != nil {
		log.Printf("[Events] publish %s failed: %v", SubjectCalculated, err)
	}
}

// PublishHistoryCleared announces that all billing records were removed
func (s *EventService) PublishHistoryCleared() {
	if !s.Enabled() {
		return
	}
	if err := s.nc.Publish(SubjectHistoryCleared, nil); err != nil {
		log.Printf("[Events] publish %s failed: %v", SubjectHistoryCleared, err)
	}
}
