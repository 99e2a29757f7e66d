package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/charlabot/charla/agent"
	"github.com/charlabot/charla/chat"
	"github.com/charlabot/charla/conversation"
	"github.com/charlabot/charla/convert"
	"github.com/charlabot/charla/llm"
	"github.com/charlabot/charla/lyrics"
	"github.com/charlabot/charla/providers/gemini"
	"github.com/charlabot/charla/providers/openai"
	"github.com/charlabot/charla/tools"
	"github.com/charlabot/charla/tools/builtin"
	"github.com/charlabot/charla/translate"
	"github.com/charlabot/charla/weather"
)

func llmClientFromViper() (llm.Client, error) {
	provider := strings.ToLower(strings.TrimSpace(viper.GetString("llm.provider")))
	endpoint := strings.TrimSpace(viper.GetString("llm.endpoint"))
	apiKey := strings.TrimSpace(viper.GetString("llm.api_key"))
	timeout := viper.GetDuration("llm.request_timeout")

	switch provider {
	case "", "gemini":
		return gemini.New(endpoint, apiKey, timeout), nil
	case "openai", "openai_custom", "deepseek", "xai":
		return openai.New(endpoint, apiKey, timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm.provider: %s", provider)
	}
}

func converterFromViper() *convert.Client {
	return convert.NewClient(
		strings.TrimSpace(viper.GetString("tools.currency.base_url")),
		viper.GetDuration("tools.currency.timeout"),
	)
}

func translatorFromViper(logger *slog.Logger) *translate.Chain {
	return translate.NewChain(
		viper.GetDuration("tools.translate.timeout"),
		translate.WithLogger(logger),
	)
}

func lyricsFromViper() *lyrics.Client {
	return lyrics.NewClient(
		strings.TrimSpace(viper.GetString("tools.lyrics.base_url")),
		viper.GetDuration("tools.lyrics.timeout"),
	)
}

func weatherFromViper() *weather.Client {
	return weather.NewClient(
		strings.TrimSpace(viper.GetString("weather.base_url")),
		strings.TrimSpace(viper.GetString("weather.api_key")),
		viper.GetDuration("weather.timeout"),
	)
}

func registryFromViper(logger *slog.Logger) *tools.Registry {
	r := tools.NewRegistry()
	r.Register(&builtin.CurrencyTool{Converter: converterFromViper()})
	r.Register(&builtin.TranslatorTool{Chain: translatorFromViper(logger)})
	r.Register(&builtin.LyricsTool{
		Finder:   lyricsFromViper(),
		MaxLines: viper.GetInt("tools.lyrics.max_lines"),
	})
	return r
}

func orchestratorFromViper(logger *slog.Logger) (*chat.Orchestrator, error) {
	client, err := llmClientFromViper()
	if err != nil {
		return nil, err
	}

	store := conversation.NewStore(
		viper.GetInt("conversation.max_history"),
		viper.GetDuration("conversation.timeout"),
	)

	engine := agent.New(client, registryFromViper(logger), agent.Config{
		MaxSteps:     viper.GetInt("agent.max_steps"),
		ParseRetries: viper.GetInt("agent.parse_retries"),
	}, agent.WithLogger(logger))

	return chat.NewOrchestrator(
		store,
		client,
		engine,
		converterFromViper(),
		translatorFromViper(logger),
		chat.Config{
			Model:         strings.TrimSpace(viper.GetString("llm.model")),
			HistoryLimit:  viper.GetInt("chat.history_limit"),
			MinAgentReply: viper.GetInt("chat.min_agent_reply"),
			SystemPrompt:  viper.GetString("chat.system_prompt"),
		},
		chat.WithLogger(logger),
	), nil
}
