package model

import "time"

// AssessmentResult is a completed assessment stored in the
// `assessment_results` table.  DimensionScores holds the per-dimension
// breakdown as a JSON document; its shape varies by assessment kind so it
// is kept opaque at this layer.
type AssessmentResult struct {
    ID              uint64    // assessment_results.id
    UserID          uint64    // assessment_results.user_id
    AssessmentID    uint64    // assessment_results.assessment_id
    OverallScore    float64   // assessment_results.overall_score
    DimensionScores string    // assessment_results.dimension_scores (JSON)
    CompletedAt     time.Time // assessment_results.completed_at
}
