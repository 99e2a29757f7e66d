package main

import (
	"time"

	"github.com/spf13/viper"
)

func initViperDefaults() {
	// LLM defaults (shared by run/telegram).
	viper.SetDefault("llm.provider", "gemini")
	viper.SetDefault("llm.endpoint", "")
	viper.SetDefault("llm.model", "gemini-2.0-flash")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.request_timeout", 90*time.Second)

	// Agent loop
	viper.SetDefault("agent.max_steps", 3)
	viper.SetDefault("agent.parse_retries", 1)

	// Conversation memory
	viper.SetDefault("conversation.max_history", 10)
	viper.SetDefault("conversation.timeout", 30*time.Minute)
	viper.SetDefault("chat.history_limit", 6)
	viper.SetDefault("chat.min_agent_reply", 10)
	viper.SetDefault("chat.system_prompt", "")

	// Tool backends
	viper.SetDefault("tools.currency.base_url", "")
	viper.SetDefault("tools.currency.timeout", 10*time.Second)
	viper.SetDefault("tools.translate.timeout", 15*time.Second)
	viper.SetDefault("tools.lyrics.base_url", "")
	viper.SetDefault("tools.lyrics.timeout", 10*time.Second)
	viper.SetDefault("tools.lyrics.max_lines", 30)

	// Weather (/clima)
	viper.SetDefault("weather.base_url", "")
	viper.SetDefault("weather.api_key", "")
	viper.SetDefault("weather.timeout", 10*time.Second)
	viper.SetDefault("weather.default_city", "Madrid")

	// Telegram
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.max_concurrency", 3)
	viper.SetDefault("telegram.handle_timeout", 2*time.Minute)
}
