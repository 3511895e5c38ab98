package model

import "time"

// Evaluator invite lifecycle states.
const (
    EvaluatorPending   = "pending"   // created, invite not yet sent
    EvaluatorInvited   = "invited"   // invite event published
    EvaluatorCompleted = "completed" // feedback submitted
)

// Evaluator is a 360° feedback contact in the `evaluators` table.  The
// invite token is a random value embedded in the feedback link; only the
// evaluator receiving the email knows it, and redeeming it is the only way
// to submit feedback.  Answers and the derived category scores are stored
// as JSON documents on the row once feedback comes in.
type Evaluator struct {
    ID              uint64     // evaluators.id
    UserID          uint64     // evaluators.user_id (participant who added them)
    Email           string     // evaluators.email
    Name            string     // evaluators.name
    Relationship    string     // evaluators.relationship (peer, manager, report, ...)
    InviteToken     string     // evaluators.invite_token
    Status          string     // evaluators.status
    InvitedAt       *time.Time // evaluators.invited_at (null until invited)
    FeedbackAnswers string     // evaluators.feedback_answers (JSON, empty until completed)
    FeedbackScores  string     // evaluators.feedback_scores (JSON, empty until completed)
    CompletedAt     *time.Time // evaluators.completed_at (null until completed)
    CreatedAt       time.Time  // evaluators.created_at
}
