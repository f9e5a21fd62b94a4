package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"StudyHub/internal/models"
)

const model = "gemini-1.5-flash"

// Service generates multiple-choice questions for the question bank.
type Service struct {
	Client *genai.Client
}

func NewService(apiKey string) (*Service, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create genai client: %w", err)
	}

	log.Println("AI Service Initialized Successfully")
	return &Service{Client: client}, nil
}

type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// GenerateQuestions asks the model for count questions on the given subject
// and difficulty and returns them as bank records. The model response is
// trimmed to its outermost JSON array before parsing; malformed or
// out-of-range items are dropped rather than surfaced.
func (s *Service) GenerateQuestions(ctx context.Context, subject, difficulty string, count int) ([]models.Question, error) {
	prompt := fmt.Sprintf(`Create %d multiple-choice questions about %s at %s difficulty.

Output MUST be a single JSON array, no surrounding text.
Each element MUST have exactly these keys:
  "question": the prompt text,
  "options": an array of exactly 4 answer strings,
  "correctAnswer": the 0-based index of the correct option,
  "explanation": one sentence explaining the correct answer.

Example of the REQUIRED format:
[
  {"question": "Which keyword declares a constant in JavaScript?", "options": ["let", "var", "const", "static"], "correctAnswer": 2, "explanation": "const declares a block-scoped constant binding."}
]`, count, subject, difficulty)

	result, err := s.Client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("could not generate content from AI: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("no text content found in AI response")
	}

	startIndex := strings.Index(text, "[")
	endIndex := strings.LastIndex(text, "]")
	if startIndex == -1 || endIndex == -1 || endIndex <= startIndex {
		return nil, fmt.Errorf("could not find valid JSON array in AI response")
	}

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(text[startIndex:endIndex+1]), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse AI response JSON: %w", err)
	}

	questions := make([]models.Question, 0, len(generated))
	for _, g := range generated {
		if g.Question == "" || len(g.Options) == 0 {
			log.Println("WARNING: Generated question missing prompt or options, skipping.")
			continue
		}
		if g.CorrectAnswer < 0 || g.CorrectAnswer >= len(g.Options) {
			log.Printf("WARNING: Generated question %q has out-of-range correct answer, skipping.", g.Question)
			continue
		}
		questions = append(questions, models.Question{
			Subject:       subject,
			Prompt:        g.Question,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
			Difficulty:    difficulty,
			Explanation:   g.Explanation,
		})
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("AI response contained no usable questions")
	}
	return questions, nil
}
