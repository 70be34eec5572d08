// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Работает только через интерфейс llm.Provider. Используется демо утилитами
// для скоринга промптов, собранных из значений фичей (pkg/prompt).
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/ilkoid/featmill/pkg/config"
	"github.com/ilkoid/featmill/pkg/llm"
	"github.com/ilkoid/featmill/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// Принимает ModelDef напрямую для упрощения создания клиентов через factory.
// Использует APIKey из конфигурации для аутентификации.
func NewClient(modelDef config.ModelDef) *Client {
	// Поддержка custom BaseURL для non-OpenAI провайдеров (Zai, DeepSeek и т.д.)
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	client := openai.NewClientWithConfig(cfg)

	return &Client{
		api:   client,
		model: modelDef.ModelName,
	}
}

// Chat выполняет запрос к API и возвращает текст ответа модели.
//
// Алгоритм:
//  1. Конвертирует внутренние сообщения в формат OpenAI SDK
//  2. Вызывает API
//  3. Возвращает контент первого choice
//
// Все ошибки возвращаются, никаких panic.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}

	utils.Debug("LLM request started",
		"model", model,
		"messages_count", len(req.Messages))

	// 1. Конвертируем наши сообщения в формат OpenAI SDK
	openaiMsgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		openaiMsgs[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	// 2. Собираем запрос
	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    openaiMsgs,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}

	if req.Format == "json_object" {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	// 3. Вызываем API
	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return "", fmt.Errorf("openai api error: %w", err)
	}

	// Проверяем что есть хотя бы один выбор
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content

	utils.Info("LLM response received",
		"model", model,
		"content_length", len(content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return content, nil
}
