package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "CONTENT_PIPELINE_CONFIG"
	llmProviderEnv      = "LLM_PROVIDER"
	openAIAPIKeyEnv     = "OPENAI_API_KEY"
	openAIModelEnv      = "OPENAI_MODEL"
	googleAPIKeyEnv     = "GOOGLE_API_KEY"
	googleModelEnv      = "GOOGLE_MODEL"
	openRouterAPIKeyEnv = "OPENROUTER_API_KEY"
	openRouterModelEnv  = "OPENROUTER_MODEL"
	tavilyAPIKeyEnv     = "TAVILY_API_KEY"
	simulationEnv       = "SIMULATION_MODE"
	logLevelEnv         = "LOG_LEVEL"
	artifactsDirEnv     = "ARTIFACTS_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	LLM        LLMConfig        `yaml:"llm"`
	Search     SearchConfig     `yaml:"search"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Splitter   SplitterConfig   `yaml:"splitter"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Simulation SimulationConfig `yaml:"simulation"`
	Ledger     LedgerConfig     `yaml:"ledger"`
}

// LoggingConfig selects slog level and handler format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LLMConfig selects the default provider and carries per-provider settings.
// Stages maps a stage name to a provider that overrides Provider for it.
type LLMConfig struct {
	Provider    string            `yaml:"provider"`
	Temperature float64           `yaml:"temperature"`
	Stages      map[string]string `yaml:"stages"`
	OpenAI      ChatGPTConfig     `yaml:"openai"`
	OpenRouter  ChatGPTConfig     `yaml:"openrouter"`
	Google      GoogleConfig      `yaml:"google"`
}

// ProviderFor returns the provider configured for a stage.
func (c LLMConfig) ProviderFor(stage string) string {
	if p := strings.TrimSpace(c.Stages[stage]); p != "" {
		return p
	}
	return c.Provider
}

// ChatGPTConfig defines how to contact an OpenAI-compatible chat API.
type ChatGPTConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	SystemPrompt   string `yaml:"systemPrompt"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// GoogleConfig configures the Gemini API client.
type GoogleConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"apiKey"`
}

// SearchConfig describes the web-search provider.
type SearchConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"apiKey"`
	MaxResults int    `yaml:"maxResults"`
}

// ScraperConfig tunes page fetching.
type ScraperConfig struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	UserAgent      string `yaml:"userAgent"`
}

// SplitterConfig controls research chunking.
type SplitterConfig struct {
	ChunkSize    int `yaml:"chunkSize"`
	ChunkOverlap int `yaml:"chunkOverlap"`
}

// AnalysisConfig caps how many chunks get summarized.
type AnalysisConfig struct {
	MaxChunks int `yaml:"maxChunks"`
}

// ArtifactsConfig points at output and fixture directories.
type ArtifactsConfig struct {
	Root     string `yaml:"root"`
	Fixtures string `yaml:"fixtures"`
}

// SimulationConfig swaps LLM-backed stages for fixture files.
type SimulationConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LedgerConfig controls the SQLite run ledger. An empty DSN keeps the ledger
// next to the artifacts as runs.db.
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

const ledgerFile = "runs.db"

// LedgerDSN returns the ledger location, following Artifacts.Root unless a
// DSN was configured.
func (c Config) LedgerDSN() string {
	if c.Ledger.DSN != "" {
		return c.Ledger.DSN
	}
	return filepath.Join(c.Artifacts.Root, ledgerFile)
}

// Load reads YAML configuration (if present) and applies environment overrides.
// The file is decoded over the defaults, so keys it omits keep their default
// and keys it sets, zero values included, win.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg := cfg
		if err := decodeFile(path, &fileCfg); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// ReadFile parses a YAML config file without applying defaults.
func ReadFile(path string) (Config, error) {
	var fileCfg Config
	err := decodeFile(path, &fileCfg)
	return fileCfg, err
}

func decodeFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Path: path, Op: "read", Err: err}
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return &FileError{Path: path, Op: "parse", Err: err}
	}
	return nil
}

// FileError reports a config file that could not be used.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return "cannot " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.LLM.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.LLM.OpenAI.Model = v
	}

	if v := os.Getenv(googleAPIKeyEnv); v != "" {
		c.LLM.Google.APIKey = v
	}
	if v := os.Getenv(googleModelEnv); v != "" {
		c.LLM.Google.Model = v
	}

	if v := os.Getenv(openRouterAPIKeyEnv); v != "" {
		c.LLM.OpenRouter.APIKey = v
	}
	if v := os.Getenv(openRouterModelEnv); v != "" {
		c.LLM.OpenRouter.Model = v
	}

	if v := os.Getenv(tavilyAPIKeyEnv); v != "" {
		c.Search.APIKey = v
	}

	if v := os.Getenv(simulationEnv); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Simulation.Enabled = enabled
		} else {
			log.Printf("config: ignoring %s=%q: %v", simulationEnv, v, err)
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(artifactsDirEnv); v != "" {
		c.Artifacts.Root = v
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		LLM: LLMConfig{
			Provider:    "OPENAI",
			Temperature: 0.7,
			OpenAI: ChatGPTConfig{
				Endpoint:       "https://api.openai.com/v1/chat/completions",
				Model:          "gpt-4o-mini",
				SystemPrompt:   "You are a meticulous content producer.",
				TimeoutSeconds: 120,
			},
			OpenRouter: ChatGPTConfig{
				Endpoint:       "https://openrouter.ai/api/v1/chat/completions",
				Model:          "meta-llama/llama-3.1-70b-instruct",
				SystemPrompt:   "You are a meticulous content producer.",
				TimeoutSeconds: 120,
			},
			Google: GoogleConfig{Model: "gemini-2.0-flash"},
		},
		Search: SearchConfig{
			Endpoint:   "https://api.tavily.com/search",
			MaxResults: 5,
		},
		Scraper:    ScraperConfig{TimeoutSeconds: 10, UserAgent: "ContentPipeline/1.0"},
		Splitter:   SplitterConfig{ChunkSize: 1000, ChunkOverlap: 200},
		Analysis:   AnalysisConfig{MaxChunks: 5},
		Artifacts:  ArtifactsConfig{Root: "artifacts", Fixtures: "simulated_artifacts"},
		Simulation: SimulationConfig{Enabled: false},
		Ledger:     LedgerConfig{Enabled: true},
	}
}
