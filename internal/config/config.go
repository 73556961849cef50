package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed emotions.yaml
var emotionsYAML []byte

type Config struct {
	Engine   EngineConfig
	Analysis AnalysisConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Emotions EmotionsConfig
}

// EngineConfig configures the local analysis engine subprocess.
type EngineConfig struct {
	Provider string        // "exec" (default), "openai" or "gemini"
	Command  string        // executable for the exec provider (e.g., python3)
	Args     []string      // arguments passed to the command (e.g., path to the wrapper script)
	Timeout  time.Duration // upper bound on a single engine invocation
}

// AnalysisConfig configures the client side of the analysis relay.
// An empty Endpoint disables analysis entirely; capture still works.
type AnalysisConfig struct {
	Endpoint string
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type StorageConfig struct {
	Dir       string // local directory for photo blobs
	PublicURL string // base URL under which stored blobs are reachable
}

type DatabaseConfig struct {
	Driver       string // "postgres" (default) or "mariadb"
	URL          string // connection URL / DSN
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// EmotionsConfig maps engine emotion codes (e.g., "HAPPY") to display labels.
type EmotionsConfig struct {
	Labels map[string]string `yaml:"labels"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envFields splits a space-separated environment variable into fields.
func envFields(key string) []string {
	return strings.Fields(os.Getenv(key))
}

func Load() *Config {
	var emotions EmotionsConfig
	if err := yaml.Unmarshal(emotionsYAML, &emotions); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded emotions.yaml: " + err.Error())
	}

	return &Config{
		Engine: EngineConfig{
			Provider: envString("ENGINE_PROVIDER", "exec"),
			Command:  envString("ENGINE_COMMAND", "python3"),
			Args:     envFields("ENGINE_ARGS"),
			Timeout:  time.Duration(envInt("ENGINE_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Analysis: AnalysisConfig{
			Endpoint: os.Getenv("ANALYZE_ENDPOINT"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Storage: StorageConfig{
			Dir:       envString("STORAGE_DIR", "./data/photos"),
			PublicURL: envString("STORAGE_PUBLIC_URL", "/photos"),
		},
		Database: DatabaseConfig{
			Driver:       envString("DATABASE_DRIVER", "postgres"),
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Emotions: emotions,
	}
}

// EmotionLabel returns the display label for an engine emotion code.
// Unknown codes are returned unchanged.
func (c *Config) EmotionLabel(code string) string {
	if label, ok := c.Emotions.Labels[strings.ToUpper(code)]; ok {
		return label
	}
	return code
}
