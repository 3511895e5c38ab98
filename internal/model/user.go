package model

import "time"

// Role names stored in users.role.  Role transitions only ever happen
// through the admin endpoints; nothing else writes this column.
const (
    RoleAdmin       = "admin"
    RoleCoach       = "coach"
    RoleParticipant = "participant"
)

// ValidRole reports whether s is one of the fixed role names.
func ValidRole(s string) bool {
    return s == RoleAdmin || s == RoleCoach || s == RoleParticipant
}

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  Handlers define separate
// response types with JSON tags; this struct is used by the repository
// layer and middleware.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of RoleAdmin, RoleCoach, RoleParticipant.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  Plan         – subscription plan label (e.g. "free", "pro").
//  HasCoach     – whether a coach is assigned to this participant.
//  IsActive     – whether the account is active; inactive accounts cannot
//                 authenticate even with an unexpired token.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    FirstName    string    // users.first_name
    LastName     string    // users.last_name
    Plan         string    // users.plan
    HasCoach     bool      // users.has_coach
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Settings groups the per-user preference columns on the users table.
type Settings struct {
    EmailNotifications bool   // users.settings_email_notifications
    WeeklyReport       bool   // users.settings_weekly_report
    DarkMode           bool   // users.settings_dark_mode
    Language           string // users.settings_language
    DataSharing        bool   // users.settings_data_sharing
    AnalyticsTracking  bool   // users.settings_analytics_tracking
}
