package model

import "time"

// Assessment kinds offered by the catalog.
const (
    AssessmentPersonality   = "personality"
    AssessmentConflictStyle = "conflict_style"
    AssessmentThreeSixty    = "threesixty"
    AssessmentWellness      = "wellness"
)

// ValidAssessmentKind reports whether s is one of the fixed catalog kinds.
func ValidAssessmentKind(s string) bool {
    switch s {
    case AssessmentPersonality, AssessmentConflictStyle, AssessmentThreeSixty, AssessmentWellness:
        return true
    }
    return false
}

// Assessment is a catalog entry in the `assessments` table.  Inactive
// entries stay in the table for old results to reference but are hidden
// from the public catalog.
type Assessment struct {
    ID            uint64    // assessments.id
    Slug          string    // assessments.slug (unique)
    Title         string    // assessments.title
    Description   string    // assessments.description
    Kind          string    // assessments.kind
    QuestionCount int       // assessments.question_count
    IsActive      bool      // assessments.is_active
    CreatedAt     time.Time // assessments.created_at
}

// Question is a single prompt of an assessment, stored in the
// `assessment_questions` table.  Sort orders questions within the
// assessment; Category groups them for scoring.
type Question struct {
    ID           uint64    // assessment_questions.id
    AssessmentID uint64    // assessment_questions.assessment_id
    Text         string    // assessment_questions.text
    Category     string    // assessment_questions.category
    Sort         int       // assessment_questions.sort
    CreatedAt    time.Time // assessment_questions.created_at
}
