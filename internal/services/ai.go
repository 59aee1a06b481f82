package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/todolist-api/internal/models"
)

type AIService struct {
	client *openai.Client
	model  string
}

// GeneratedTask is a task draft suggested from free text. It is never stored.
type GeneratedTask struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Difficulty  models.Difficulty `json:"difficulty"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

// NewAIServiceWithConfig builds the service from a full client config,
// e.g. to point it at a proxy or a test server.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// GenerateTasksFromText analyzes text and extracts task drafts using OpenAI GPT
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	difficulties := make([]string, 0, len(models.Difficulties))
	for _, d := range models.Difficulties {
		difficulties = append(difficulties, string(d))
	}

	prompt := fmt.Sprintf(`You are a to-do list assistant. Extract concrete tasks from the text below.

Text:
%s

Return a JSON array of tasks in this format:
[
  {
    "name": "short task name (at most 64 characters)",
    "description": "one sentence description (at most 128 characters)",
    "difficulty": "one of: %s"
  }
]

Rules:
- Return an empty array [] when the text contains no task
- Pick the difficulty that best matches the effort the task needs
- Return JSON only, without any explanation`, text, strings.Join(difficulties, ", "))

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
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

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

// stripCodeFence removes a surrounding ```json fence the model sometimes adds.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
