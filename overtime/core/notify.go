package core

import (
	"context"
	"log"
)

// NotificationInput is everything the sink needs for one delivery.
type NotificationInput struct {
	OrganizationID string
	UserID         string
	Type           string
	Title          string
	Message        string
	RelatedID      string
	RequiresReview bool
}

// Notifier is the at-least-once delivery sink (in-app row plus push).
// Delivery failures must never fail the operation that triggered them.
type Notifier interface {
	Send(ctx context.Context, in NotificationInput) error
}

// sendQuiet delivers best-effort: a sink failure is logged and swallowed.
func sendQuiet(ctx context.Context, n Notifier, in NotificationInput) {
	if n == nil {
		return
	}
	if err := n.Send(ctx, in); err != nil {
		log.Printf("[WARN] notification %s to user %s failed: %v", in.Type, in.UserID, err)
	}
}
