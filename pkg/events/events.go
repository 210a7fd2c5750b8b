// Package events publishes visit lifecycle events for downstream consumers
// such as bed management and billing.
package events

import (
	"context"
	"time"
)

type Type string

const (
	TypeAdmitted   Type = "visit.admitted"
	TypeDischarged Type = "visit.discharged"
)

// VisitEvent is the JSON payload written to the topic. Key is the MRN so all
// events for a patient land on one partition in order.
type VisitEvent struct {
	Type         Type       `json:"type"`
	VisitID      string     `json:"visit_id"`
	MRN          string     `json:"mrn"`
	Specialty    string     `json:"specialty"`
	Status       string     `json:"status"`
	AdmittedAt   time.Time  `json:"admitted_at"`
	DischargedAt *time.Time `json:"discharged_at,omitempty"`
	Actor        string     `json:"actor"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e VisitEvent) error
	Close() error
}

// Nop discards events. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, VisitEvent) error { return nil }
func (Nop) Close() error                              { return nil }
