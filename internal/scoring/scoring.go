package scoring

import (
	"math"

	"StudyHub/internal/models"
)

// Unanswered is the sentinel stored in an answer buffer slot the user never
// filled. It is out of range for every option set, so it can never match.
const Unanswered = -1

// Outcome is the score of a completed answer set.
type Outcome struct {
	Percentage   int
	CorrectCount int
}

// Score compares an answer buffer against the questions' correct options.
// Callers guarantee len(answers) == len(questions). Percentage rounds
// half-up to an integer in 0-100.
func Score(questions []models.Question, answers []int) Outcome {
	if len(questions) == 0 {
		return Outcome{}
	}

	correct := 0
	for i, q := range questions {
		if answers[i] == q.CorrectAnswer {
			correct++
		}
	}

	pct := int(math.Round(float64(correct) / float64(len(questions)) * 100))
	return Outcome{Percentage: pct, CorrectCount: correct}
}

// EmptyAnswers returns a fresh answer buffer with every slot unanswered.
func EmptyAnswers(n int) []int {
	answers := make([]int, n)
	for i := range answers {
		answers[i] = Unanswered
	}
	return answers
}
