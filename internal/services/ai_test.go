package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/todolist-api/internal/models"
)

func newTestAIService(t *testing.T, reply string) (*AIService, *string) {
	t.Helper()

	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		prompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
			},
		}))
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg), &prompt
}

func TestAIService_GenerateTasksFromText(t *testing.T) {
	service, prompt := newTestAIService(t, "```json\n[{\"name\":\"Fix the sink\",\"description\":\"kitchen\",\"difficulty\":\"hard\"}]\n```")

	tasks, err := service.GenerateTasksFromText(context.Background(), "the kitchen sink leaks")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Fix the sink", tasks[0].Name)
	assert.Equal(t, "kitchen", tasks[0].Description)
	assert.Equal(t, models.DifficultyHard, tasks[0].Difficulty)

	assert.Contains(t, *prompt, "the kitchen sink leaks")
	assert.Contains(t, *prompt, "trivial, easy, ok, hard, heroic, nightmare")
}

func TestAIService_GenerateTasksFromText_BadJSON(t *testing.T) {
	service, _ := newTestAIService(t, "sorry, I cannot help")

	_, err := service.GenerateTasksFromText(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to parse AI response"))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", stripCodeFence("[]"))
	assert.Equal(t, "[]", stripCodeFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("```\n[]\n```"))
}
