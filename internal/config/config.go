package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration. It is built once at startup and passed by
// value to the components that need it. Secrets (the LLM API key) come from the
// environment or from the config file; never committed.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Agent   AgentConfig   `mapstructure:"agent"`
	PNCP    PNCPConfig    `mapstructure:"pncp"`
	Data    DataConfig    `mapstructure:"data"`
	Prompts PromptsConfig `mapstructure:"prompts"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LLMConfig configures the chat-completions endpoint.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"` // empty = OpenAI
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// AgentConfig bounds the orchestration loop.
type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
	// MemoryLimit is the number of retained messages (two per completed turn).
	MemoryLimit int `mapstructure:"memory_limit"`
	// ToolOutputMaxRunes caps tool output fed back to the model (0 = no truncation).
	ToolOutputMaxRunes int `mapstructure:"tool_output_max_runes"`
}

// PNCPConfig configures the procurement search API client.
type PNCPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// DataConfig locates the municipality dataset.
type DataConfig struct {
	MunicipalitiesPath string `mapstructure:"municipalities_path"`
	// MunicipalitiesURL is downloaded into MunicipalitiesPath when the file is missing. Empty disables it.
	MunicipalitiesURL string `mapstructure:"municipalities_url"`
}

// PromptsConfig points at an optional directory overriding the embedded prompt files.
type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}

// StoreConfig configures the transcript database. Empty path disables it.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// MetricsConfig controls the Prometheus listener. Empty addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// ConfigError is a fatal startup problem the user has to fix.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuração inválida (%s): %s", e.Field, e.Reason)
}

// Remediation returns a hint telling the user how to fix the problem.
func (e *ConfigError) Remediation() string {
	if e.Field == "llm.api_key" {
		return "Defina a variável OPENAI_API_KEY (ou CONTRATAI_LLM_API_KEY) no ambiente ou llm.api_key no arquivo contratai.yaml."
	}
	return fmt.Sprintf("Revise o valor de %s no arquivo contratai.yaml ou na variável CONTRATAI_%s.",
		e.Field, strings.ToUpper(strings.ReplaceAll(e.Field, ".", "_")))
}

// Load reads configuration from the provided path, or from contratai.yaml in the
// working directory or ~/.config/contratai when path is empty. Environment variables
// override file values (prefix CONTRATAI_, dots replaced with underscores).
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CONTRATAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Plain names used by existing .env files.
	_ = v.BindEnv("llm.api_key", "CONTRATAI_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.model", "CONTRATAI_LLM_MODEL", "OPENAI_MODEL")
	_ = v.BindEnv("llm.temperature", "CONTRATAI_LLM_TEMPERATURE", "TEMPERATURE")
	_ = v.BindEnv("llm.max_tokens", "CONTRATAI_LLM_MAX_TOKENS", "MAX_TOKENS")

	if path == "" {
		v.SetConfigName("contratai")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/contratai")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied and no file or env.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.max_retries", 3)

	v.SetDefault("agent.max_iterations", 15)
	v.SetDefault("agent.memory_limit", 20)
	v.SetDefault("agent.tool_output_max_runes", 0)

	v.SetDefault("pncp.base_url", "https://pncp.gov.br/api/consulta")
	v.SetDefault("pncp.timeout", 30*time.Second)
	v.SetDefault("pncp.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	v.SetDefault("data.municipalities_path", "data/municipios.json")
	v.SetDefault("data.municipalities_url", "https://servicodados.ibge.gov.br/api/v1/localidades/municipios")

	v.SetDefault("prompts.dir", "")
	v.SetDefault("store.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.addr", "")
}

// Validate performs sanity checks on configuration values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return &ConfigError{Field: "llm.api_key", Reason: "chave da API do modelo não configurada"}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return &ConfigError{Field: "llm.model", Reason: "modelo não configurado"}
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return &ConfigError{Field: "llm.temperature", Reason: "deve estar entre 0 e 2"}
	}
	if c.LLM.MaxTokens < 0 {
		return &ConfigError{Field: "llm.max_tokens", Reason: "não pode ser negativo"}
	}
	if c.LLM.MaxRetries < 0 {
		return &ConfigError{Field: "llm.max_retries", Reason: "não pode ser negativo"}
	}
	if c.Agent.MaxIterations <= 0 {
		return &ConfigError{Field: "agent.max_iterations", Reason: "deve ser maior que zero"}
	}
	if c.Agent.MemoryLimit <= 0 || c.Agent.MemoryLimit%2 != 0 {
		return &ConfigError{Field: "agent.memory_limit", Reason: "deve ser um número par maior que zero"}
	}
	if c.Agent.ToolOutputMaxRunes < 0 {
		return &ConfigError{Field: "agent.tool_output_max_runes", Reason: "não pode ser negativo"}
	}
	if strings.TrimSpace(c.PNCP.BaseURL) == "" {
		return &ConfigError{Field: "pncp.base_url", Reason: "URL da API do PNCP não configurada"}
	}
	if c.PNCP.Timeout <= 0 {
		return &ConfigError{Field: "pncp.timeout", Reason: "deve ser maior que zero"}
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return &ConfigError{Field: "logging.format", Reason: fmt.Sprintf("deve ser console ou json, recebido %q", c.Logging.Format)}
	}
	return nil
}
