package assembler

import (
	"fmt"
	"strings"

	"StudyHub/internal/models"
)

// DefaultSubjects is the configured subject list tests are assembled for.
// It is a fixed set, not derived from the question bank.
var DefaultSubjects = []string{"JavaScript", "React", "Python", "HTML/CSS"}

var difficulties = []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}

const (
	// minQuestions is the threshold below which a subject or a
	// subject/difficulty pair yields no test.
	minQuestions = 3
	// maxQuestions is the window size: a test takes the first matches only.
	maxQuestions = 5
)

// TestDefinition is a named, timed quiz assembled from the question bank.
// Questions are a snapshot taken at assembly time; later edits to the bank
// do not change a definition already handed out.
type TestDefinition struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Subject    string            `json:"subject"`
	Duration   int               `json:"duration"` // minutes
	Difficulty string            `json:"difficulty"`
	Questions  []models.Question `json:"questions"`
}

// Build groups the question bank into runnable test definitions, one per
// subject/difficulty pair with at least minQuestions matches. Questions keep
// their arrival order; no shuffling. An empty outcome degrades to a single
// built-in sample test so the test list is never empty.
func Build(questions []models.Question, subjects []string) []TestDefinition {
	if len(subjects) == 0 {
		subjects = DefaultSubjects
	}

	var tests []TestDefinition
	for _, subject := range subjects {
		var subjectQuestions []models.Question
		for _, q := range questions {
			if q.Subject == subject {
				subjectQuestions = append(subjectQuestions, q)
			}
		}
		if len(subjectQuestions) < minQuestions {
			continue
		}

		for _, difficulty := range difficulties {
			var matched []models.Question
			for _, q := range subjectQuestions {
				if q.Difficulty == difficulty {
					matched = append(matched, q)
				}
			}
			if len(matched) < minQuestions {
				continue
			}
			if len(matched) > maxQuestions {
				matched = matched[:maxQuestions]
			}
			tests = append(tests, TestDefinition{
				ID:         fmt.Sprintf("%s-%s", strings.ToLower(subject), strings.ToLower(difficulty)),
				Title:      fmt.Sprintf("%s %s", subject, difficulty),
				Subject:    subject,
				Duration:   durationFor(difficulty),
				Difficulty: difficulty,
				Questions:  matched,
			})
		}
	}

	if len(tests) == 0 {
		return []TestDefinition{fallbackTest()}
	}
	return tests
}

// Find returns the test with the given id from an assembled list.
func Find(tests []TestDefinition, id string) (TestDefinition, bool) {
	for _, t := range tests {
		if t.ID == id {
			return t, true
		}
	}
	return TestDefinition{}, false
}

func durationFor(difficulty string) int {
	switch difficulty {
	case models.DifficultyEasy:
		return 15
	case models.DifficultyMedium:
		return 20
	default:
		return 25
	}
}

// fallbackTest is the built-in sample shown when no subject/difficulty pair
// meets the threshold.
func fallbackTest() TestDefinition {
	return TestDefinition{
		ID:         "javascript-basics",
		Title:      "JavaScript Fundamentals",
		Subject:    "JavaScript",
		Duration:   15,
		Difficulty: models.DifficultyEasy,
		Questions: []models.Question{
			{
				Subject:       "JavaScript",
				Prompt:        "What is the correct way to declare a variable in JavaScript?",
				Options:       []string{"var myVar = 5;", "variable myVar = 5;", "v myVar = 5;", "declare myVar = 5;"},
				CorrectAnswer: 0,
				Difficulty:    models.DifficultyEasy,
				Explanation:   "In JavaScript, variables are declared using var, let, or const keywords.",
			},
			{
				Subject:       "JavaScript",
				Prompt:        "Which method is used to add an element to the end of an array?",
				Options:       []string{"append()", "push()", "add()", "insert()"},
				CorrectAnswer: 1,
				Difficulty:    models.DifficultyEasy,
				Explanation:   "The push() method adds one or more elements to the end of an array.",
			},
		},
	}
}
