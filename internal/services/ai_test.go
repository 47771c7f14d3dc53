package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/services"
)

func newCompletionServer(t *testing.T, content string, captured *openai.ChatCompletionRequest) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  "llama3.2",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateProjectDescription(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := newCompletionServer(t, "  \"A focused launch plan.\"  ", &req)

	svc := services.NewAIService(config.AIConfig{BaseURL: srv.URL + "/v1/", Model: "llama3.2"})
	require.NotNil(t, svc)

	description, err := svc.GenerateProjectDescription(context.Background(), "Launch", "ship v2")
	require.NoError(t, err)
	assert.Equal(t, "A focused launch plan.", description)

	assert.Equal(t, "llama3.2", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, `"Launch"`)
	assert.Contains(t, req.Messages[1].Content, "ship v2")
}

func TestGenerateProjectDescription_EmptyReply(t *testing.T) {
	srv := newCompletionServer(t, "   ", nil)
	svc := services.NewAIService(config.AIConfig{BaseURL: srv.URL + "/v1", Model: "llama3.2"})

	_, err := svc.GenerateProjectDescription(context.Background(), "Launch", "")
	assert.ErrorIs(t, err, services.ErrAIEmptyResponse)
}

func TestGenerateProjectDescription_Validation(t *testing.T) {
	var unconfigured *services.AIService
	assert.Nil(t, services.NewAIService(config.AIConfig{}))

	_, err := unconfigured.GenerateProjectDescription(context.Background(), "Launch", "")
	assert.ErrorIs(t, err, services.ErrAIServiceNotConfigured)

	svc := services.NewAIService(config.AIConfig{BaseURL: "http://127.0.0.1:1/v1"})
	_, err = svc.GenerateProjectDescription(context.Background(), "  ", "")
	assert.ErrorIs(t, err, services.ErrProjectNameRequired)
}
