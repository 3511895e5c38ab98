package model

import "time"

// Subscription mirrors the `subscriptions` table.  Billing itself happens
// in an external payment provider; this table holds the locally relevant
// view of the plan and the coaching add-on.
type Subscription struct {
    ID            uint64    // subscriptions.id
    UserID        uint64    // subscriptions.user_id
    Plan          string    // subscriptions.plan
    Status        string    // subscriptions.status (active, canceled, past_due)
    CoachingAddon bool      // subscriptions.coaching_addon
    PeriodEnd     time.Time // subscriptions.period_end
    CreatedAt     time.Time // subscriptions.created_at
}
