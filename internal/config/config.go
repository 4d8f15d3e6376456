package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// ErrPlaceholderAPIKey flags an API key that was obviously never filled in.
var ErrPlaceholderAPIKey = errors.New("api key looks like a placeholder")

// Config aggregates every setting of the service.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Gemini  GeminiConfig
	Backend BackendConfig
	Store   StoreConfig
	Log     LogConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	gemini, err := loadGeminiConfig()
	if err != nil {
		return nil, err
	}

	backend, err := loadBackendConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		AI:      ai,
		Gemini:  gemini,
		Backend: backend,
		Store:   loadStoreConfig(),
		Log:     loadLogConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are taken as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the Ark chat model used through eino.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + ARK_MODEL or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// GeminiConfig describes the Gemini direct provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Enabled reports whether a Gemini key was supplied.
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// geminiKeyEnv is the lookup order for the Gemini API key.
var geminiKeyEnv = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "EXPO_PUBLIC_GEMINI_API_KEY"}

func loadGeminiConfig() (GeminiConfig, error) {
	var key, source string
	for _, name := range geminiKeyEnv {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			key, source = value, name
			break
		}
	}

	if IsPlaceholderKey(key) {
		return GeminiConfig{}, fmt.Errorf("invalid %s value: %w", source, ErrPlaceholderAPIKey)
	}

	return GeminiConfig{
		APIKey: key,
		Model:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
	}, nil
}

var placeholderKeys = []string{
	"your_api_key_here",
	"your-api-key",
	"your_gemini_api_key",
	"api_key",
	"changeme",
	"placeholder",
	"todo",
}

// IsPlaceholderKey reports whether key is a template value rather than a credential.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return false
	}
	for _, p := range placeholderKeys {
		if k == p {
			return true
		}
	}
	if strings.HasPrefix(k, "<") && strings.HasSuffix(k, ">") {
		return true
	}
	if strings.HasPrefix(k, "your_") || strings.HasPrefix(k, "your-") {
		return true
	}
	return strings.Trim(k, "x") == ""
}

// BackendConfig controls the completion fallback chain.
type BackendConfig struct {
	// URL of the primary chatbot backend. Empty disables the primary layer.
	URL            string
	PrimaryTimeout time.Duration
	DirectTimeout  time.Duration
	HistoryLimit   int
}

func loadBackendConfig() (BackendConfig, error) {
	primary, err := parseDurationEnv("CHATBOT_BACKEND_TIMEOUT", 8*time.Second)
	if err != nil {
		return BackendConfig{}, err
	}

	direct, err := parseDurationEnv("CHATBOT_DIRECT_TIMEOUT", 15*time.Second)
	if err != nil {
		return BackendConfig{}, err
	}

	historyLimit := 10
	if override, err := parseOptionalIntEnv("CHATBOT_HISTORY_LIMIT"); err != nil {
		return BackendConfig{}, err
	} else if override != nil {
		historyLimit = *override
		if historyLimit < 0 {
			historyLimit = 0
		}
	}

	return BackendConfig{
		URL:            strings.TrimRight(strings.TrimSpace(os.Getenv("CHATBOT_BACKEND_URL")), "/"),
		PrimaryTimeout: primary,
		DirectTimeout:  direct,
		HistoryLimit:   historyLimit,
	}, nil
}

// StoreConfig selects the chat log storage.
type StoreConfig struct {
	MongoURI string
	MongoDB  string
}

// UseMongo reports whether logs go to MongoDB instead of memory.
func (c StoreConfig) UseMongo() bool {
	return c.MongoURI != ""
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		MongoURI: strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDB:  getEnvOrDefault("MONGO_DB", "movilbot"),
	}
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level      string
	File       string
	Production bool
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:      strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		File:       strings.TrimSpace(os.Getenv("LOG_FILE")),
		Production: strings.EqualFold(os.Getenv("APP_ENV"), "production"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	// Bare integers are milliseconds, matching the client-side timeouts.
	if ms, err := strconv.Atoi(raw); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
