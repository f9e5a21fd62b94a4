package results

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"StudyHub/internal/models"
)

// Recorder persists finished test attempts and reads them back for the
// stats and history views.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Save stores a completed attempt, assigning its id and completion
// timestamp server-side, and returns the new id.
func (r *Recorder) Save(ctx context.Context, result *models.TestResult) (uint, error) {
	result.CompletedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(result).Error; err != nil {
		return 0, fmt.Errorf("save test result: %w", err)
	}
	return result.ID, nil
}

// ListForUser returns the user's results, newest first.
func (r *Recorder) ListForUser(ctx context.Context, userID uint) ([]models.TestResult, error) {
	var results []models.TestResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at desc").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	return results, nil
}

// Summary is the aggregate view over a user's prior attempts.
type Summary struct {
	TestsCompleted int     `json:"tests_completed"`
	AverageScore   int     `json:"average_score"`
	HoursSpent     float64 `json:"hours_spent"`
}

// SummaryForUser computes simple aggregates over the user's results.
// Average score rounds to an integer percent; time spent is reported in
// hours with one decimal.
func (r *Recorder) SummaryForUser(ctx context.Context, userID uint) (Summary, error) {
	results, err := r.ListForUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	if len(results) == 0 {
		return Summary{}, nil
	}

	scoreSum, timeSum := 0, 0
	for _, res := range results {
		scoreSum += res.Score
		timeSum += res.TimeSpent
	}

	return Summary{
		TestsCompleted: len(results),
		AverageScore:   int(math.Round(float64(scoreSum) / float64(len(results)))),
		HoursSpent:     math.Round(float64(timeSum)/3600*10) / 10,
	}, nil
}
