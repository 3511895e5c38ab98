package handler

import (
    "context"
    "database/sql"
    "encoding/json"
    "math"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arisehq/arise-api/internal/model"
)

// Feedback question categories.  Each category owns a contiguous block of
// questionsPerCategory question ids, starting at 1, in this order; the
// submit handler derives per-category scores from that layout.
var feedbackCategories = []string{
    "Communication",
    "Team Culture",
    "Leadership Style",
    "Change Management",
    "Problem Solving",
    "Stress Management",
}

const questionsPerCategory = 5

// FeedbackStore is the slice of the evaluator repository the public
// feedback endpoints need.
type FeedbackStore interface {
    GetByToken(ctx context.Context, token string) (model.Evaluator, string, error)
    CompleteFeedback(ctx context.Context, id uint64, answers, scores string, at time.Time) error
}

// FeedbackHandler serves the evaluator-facing half of the 360° flow.  The
// endpoints are public: the invite token in the URL is the only credential,
// which is why tokens are long, random and never listed in any
// authenticated response.
type FeedbackHandler struct {
    Evaluators FeedbackStore
}

func NewFeedbackHandler(evaluators FeedbackStore) *FeedbackHandler {
    return &FeedbackHandler{Evaluators: evaluators}
}

type feedbackEvaluatorPart struct {
    ID           uint64 `json:"id"`
    Name         string `json:"name"`
    Relationship string `json:"relationship"`
    UserName     string `json:"user_name"`
    Status       string `json:"status"`
}

// Show resolves an invite token so the feedback page can greet the
// evaluator and name the participant being reviewed.  Unknown tokens are a
// 404; the message does not distinguish never-existed from revoked.
func (h *FeedbackHandler) Show(c echo.Context) error {
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev, userName, err := h.Evaluators.GetByToken(ctx, token)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired feedback link"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if userName == "" {
        userName = "User"
    }
    return c.JSON(http.StatusOK, echo.Map{"evaluator": feedbackEvaluatorPart{
        ID: ev.ID, Name: ev.Name, Relationship: ev.Relationship,
        UserName: userName, Status: ev.Status,
    }})
}

type submitFeedbackReq struct {
    Answers map[string]int `json:"answers"`
}

// Submit stores an evaluator's answers, derives per-category and overall
// scores and completes the evaluator.  Answers are keyed by question id on
// a 1-5 scale; a second submission for the same token is rejected.
func (h *FeedbackHandler) Submit(c echo.Context) error {
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
    }

    var req submitFeedbackReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.Answers) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "answers are required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    ev, _, err := h.Evaluators.GetByToken(ctx, token)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired feedback link"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if ev.Status == model.EvaluatorCompleted {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "feedback has already been submitted"})
    }

    scores := scoreFeedback(req.Answers)

    answersJSON, err := json.Marshal(req.Answers)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode answers failed"})
    }
    scoresJSON, err := json.Marshal(scores)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode scores failed"})
    }

    err = h.Evaluators.CompleteFeedback(ctx, ev.ID, string(answersJSON), string(scoresJSON), time.Now().UTC())
    if err != nil {
        if err == sql.ErrNoRows {
            // Lost the race against a concurrent submission for the same token.
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "feedback has already been submitted"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save feedback failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message": "feedback submitted successfully",
        "scores":  scores,
    })
}

// scoreFeedback averages each category's answered questions and rescales
// the 1-5 answers to 0-100.  Unanswered questions are skipped rather than
// counted as zero; a fully skipped category scores 0.  The overall score is
// the plain average across categories.
func scoreFeedback(answers map[string]int) map[string]int {
    scores := make(map[string]int, len(feedbackCategories)+1)
    total := 0
    for i, category := range feedbackCategories {
        first := i*questionsPerCategory + 1
        sum, count := 0, 0
        for qid := first; qid < first+questionsPerCategory; qid++ {
            if v, ok := answers[strconv.Itoa(qid)]; ok && v > 0 {
                sum += v
                count++
            }
        }
        score := 0
        if count > 0 {
            score = int(math.Round(float64(sum) / float64(count) * 20))
        }
        scores[category] = score
        total += score
    }
    scores["overall"] = int(math.Round(float64(total) / float64(len(feedbackCategories))))
    return scores
}
