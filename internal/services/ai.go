package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
}

type SuggestedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// SuggestTasksFromText analyzes an event brief and proposes a task breakdown
// using OpenAI GPT
func (s *AIService) SuggestTasksFromText(ctx context.Context, eventName, text string) ([]SuggestedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`You are a task planning assistant for event operations teams. Break the brief below into concrete preparation tasks for the event "%s".

Current time: %s

Brief:
%s

Return a JSON array of tasks in this exact shape:
[
  {
    "title": "short task title",
    "description": "what needs to be done",
    "due_date": "deadline in ISO8601 (e.g. 2025-10-28T23:59:59Z), or null if the brief gives none"
  }
]

Rules:
- Return an empty array [] if no tasks can be extracted
- Convert relative deadlines ("two weeks before opening") into concrete dates
- due_date must be an ISO8601 string or null
- Return only the JSON, no surrounding prose`, eventName, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var tasks []SuggestedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
