package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Keys    APIKeys
	Ai      AIConfig
	Session SessionConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	EventLogFilePath   string
	CorsAllowedOrigins string
	UploadDir          string
	NatsURL            string
	EventsTopic        string
}

type APIKeys struct {
	OpenAI string
}

type AIConfig struct {
	LLMProvider   string // "openai" or "ollama"
	ChatModel     string // model for free-form chat turns
	AnalysisModel string // model for upload-triggered analysis
	OpenAIBaseURL string
	OllamaBaseURL string
	Timeout       time.Duration // 0 disables the per-call deadline
}

type SessionConfig struct {
	HistoryLimit int
	MaxMessages  int           // 0 keeps the full transcript
	IdleTTL      time.Duration // 0 never evicts
}

type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			EventLogFilePath:   getEnv("EVENT_LOG_FILE_PATH", "logs/events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			NatsURL:            getEnv("NATS_URL", ""),
			EventsTopic:        getEnv("EVENTS_TOPIC", "chatbot.events"),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			ChatModel:     getEnv("LLM_CHAT_MODEL", "gpt-4"),
			AnalysisModel: getEnv("LLM_ANALYSIS_MODEL", "gpt-3.5-turbo"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Timeout:       time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		Session: SessionConfig{
			HistoryLimit: getEnvAsInt("SESSION_HISTORY_LIMIT", 25),
			MaxMessages:  getEnvAsInt("SESSION_MAX_MESSAGES", 0),
			IdleTTL:      time.Duration(getEnvAsInt("SESSION_IDLE_TTL_MINUTES", 0)) * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      getEnv("OTEL_ENABLED", "false") == "true",
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
