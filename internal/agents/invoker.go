// Package agents implements the production AgentInvoker on top of eino chat
// models. Each persona is a system prompt; the snapshot is rendered into the
// user message for the stage being executed.
package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/irwinb/tradecouncil/internal/config"
	"github.com/irwinb/tradecouncil/internal/graph"
	"github.com/irwinb/tradecouncil/internal/models"
)

// ChatInvoker runs every persona against one chat model. Retries and
// backoff are owned by the model client, not by the engine.
type ChatInvoker struct {
	model model.BaseChatModel
}

// NewChatInvoker builds the chat model for the configured provider.
func NewChatInvoker(ctx context.Context, cfg *config.Config) (*ChatInvoker, error) {
	switch cfg.LLMProvider {
	case "deepseek":
		chatModel, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.QuickThinkLLM,
			MaxTokens: 4096,
		})
		if err != nil {
			return nil, fmt.Errorf("create deepseek model: %w", err)
		}
		return &ChatInvoker{model: chatModel}, nil
	case "openai":
		maxTokens := 4096
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.QuickThinkLLM,
			MaxTokens: &maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return &ChatInvoker{model: chatModel}, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}

// Invoke renders the stage context for the persona and generates one
// response.
func (a *ChatInvoker) Invoke(ctx context.Context, stage graph.Stage, persona string, snapshot *models.AnalysisState) (string, error) {
	messages, err := buildMessages(ctx, stage, persona, snapshot)
	if err != nil {
		return "", fmt.Errorf("build messages for %s: %w", persona, err)
	}

	out, err := a.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate for %s: %w", persona, err)
	}
	return out.Content, nil
}
