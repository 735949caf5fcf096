package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	GeminiAPIKey  string
	AnalysisModel string
	ChatModel     string
	RedisAddr     string

	// Delay between sequential time-based model calls. Deliberate throughput
	// tradeoff to stay under the provider's rate limiter.
	CallDelay time.Duration

	SessionTTL time.Duration

	PromptConfigPath string
	PromptConfigName string
}

func Load() *Config {
	cfg := &Config{
		Port:             getenv("PORT", "8080"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		AnalysisModel:    getenv("ANALYSIS_MODEL", "gemini-2.5-flash"),
		ChatModel:        getenv("CHAT_MODEL", "gemini-2.5-flash"),
		RedisAddr:        redisAddr(),
		CallDelay:        time.Duration(getenvInt("ANALYSIS_CALL_DELAY_MS", 1000)) * time.Millisecond,
		SessionTTL:       time.Duration(getenvInt("CHAT_SESSION_TTL_MINUTES", 60)) * time.Minute,
		PromptConfigPath: getenv("PROMPT_CONFIG_PATH", "./configs"),
		PromptConfigName: getenv("PROMPT_CONFIG_NAME", "prompts"),
	}
	return cfg
}

func redisAddr() string {
	for _, k := range []string{"REDIS_ADDR", "REDIS_URI", "REDIS_URL"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
