// Package queue defines the evaluator-invite event and the background
// consumer that dispatches invites.
package queue

import "time"

// InviteQueueName is the durable queue carrying evaluator invites.
const InviteQueueName = "evaluator.invited"

// EvaluatorInvitedEvent is published when a participant sends 360° invites.
// The consumer hands it to the mail boundary; the HTTP request does not
// wait for delivery.
type EvaluatorInvitedEvent struct {
    EvaluatorID uint64    `json:"evaluator_id"`
    UserID      uint64    `json:"user_id"`
    Email       string    `json:"email"`
    Name        string    `json:"name"`
    InviteToken string    `json:"invite_token"`
    InvitedAt   time.Time `json:"invited_at"`
}
