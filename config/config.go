package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the newsdesk service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // json or console
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address        string        `mapstructure:"address"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	SecureCookies  bool          `mapstructure:"secure_cookies"` // set the Secure flag on the session cookie
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.JWTSecret) == "" {
		return fmt.Errorf("server.jwt_secret required")
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be > 0")
	}
	return nil
}

// LLMConfig contains the generative backend settings
type LLMConfig struct {
	Type        string        `mapstructure:"type"` // openai or any compatible endpoint
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SourcesConfig contains news source configurations
type SourcesConfig struct {
	NewsAPI   NewsAPIConfig   `mapstructure:"newsapi"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
}

// NewsAPIConfig contains NewsAPI settings
type NewsAPIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// WebSearchConfig contains web search settings
type WebSearchConfig struct {
	Provider     string `mapstructure:"provider"` // brave or serper
	BraveAPIKey  string `mapstructure:"brave_api_key"`
	SerperAPIKey string `mapstructure:"serper_api_key"`
}

// APIKey returns the credential for the selected provider.
func (w WebSearchConfig) APIKey() string {
	switch strings.ToLower(w.Provider) {
	case "serper":
		return w.SerperAPIKey
	default:
		return w.BraveAPIKey
	}
}

// FetchConfig controls article retrieval by URL
type FetchConfig struct {
	Renderer  string        `mapstructure:"renderer"` // http or chromedp
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxChars  int           `mapstructure:"max_chars"`
	UserAgent string        `mapstructure:"user_agent"`
}

// PipelineConfig bounds the retrieval and synthesis pipeline.
type PipelineConfig struct {
	TierTimeout         time.Duration `mapstructure:"tier_timeout"`
	CallTimeout         time.Duration `mapstructure:"call_timeout"`
	BackendConcurrency  int           `mapstructure:"backend_concurrency"`
	AnalysisConcurrency int           `mapstructure:"analysis_concurrency"`
	LLMConcurrency      int           `mapstructure:"llm_concurrency"` // in-flight generative calls across all requests
	MaxContextChars     int           `mapstructure:"max_context_chars"`
	DefaultLocale       string        `mapstructure:"default_locale"`
	DateFormat          string        `mapstructure:"date_format"`
	Keywords            []string      `mapstructure:"keywords"`
}

// Normalize applies defaults when values are omitted.
func (p PipelineConfig) Normalize() PipelineConfig {
	if p.TierTimeout <= 0 {
		p.TierTimeout = 8 * time.Second
	}
	if p.CallTimeout <= 0 {
		p.CallTimeout = 45 * time.Second
	}
	if p.BackendConcurrency <= 0 {
		p.BackendConcurrency = 4
	}
	if p.AnalysisConcurrency <= 0 {
		p.AnalysisConcurrency = 6
	}
	if p.LLMConcurrency <= 0 {
		p.LLMConcurrency = 8
	}
	if p.MaxContextChars <= 0 {
		p.MaxContextChars = 6000
	}
	p.DefaultLocale = strings.TrimSpace(p.DefaultLocale)
	if p.DefaultLocale == "" {
		p.DefaultLocale = "en-US"
	}
	if strings.TrimSpace(p.DateFormat) == "" {
		p.DateFormat = "Jan 2, 2006"
	}
	return p
}

// Validate checks the pipeline bounds.
func (p PipelineConfig) Validate() error {
	if p.MaxContextChars < 200 {
		return fmt.Errorf("pipeline.max_context_chars must be >= 200")
	}
	if p.AnalysisConcurrency > 6 {
		return fmt.Errorf("pipeline.analysis_concurrency cannot exceed the six sub-analyses")
	}
	if p.LLMConcurrency < p.AnalysisConcurrency {
		return fmt.Errorf("pipeline.llm_concurrency must be >= pipeline.analysis_concurrency")
	}
	return nil
}

// TelemetryConfig contains tracing settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a libpq connection string, preferring an explicit url.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.log_format", "json")
	v.SetDefault("server.address", ":10001")
	v.SetDefault("server.session_ttl", "24h")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("llm.type", "openai")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.max_tokens", 1200)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("sources.newsapi.endpoint", "https://newsapi.org/v2")
	v.SetDefault("sources.web_search.provider", "brave")
	v.SetDefault("sources.fetch.renderer", "http")
	v.SetDefault("sources.fetch.timeout", "20s")
	v.SetDefault("sources.fetch.max_chars", 20000)
	v.SetDefault("sources.fetch.user_agent", "newsdesk/1.0 (+https://github.com/mohammad-safakhou/newsdesk)")
	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.timeout", "5s")
	v.SetDefault("telemetry.service_name", "newsdesk")
}

// Load reads configuration from path (or the default search paths when empty)
// and the NEWSDESK_* environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("NEWSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // read in environment variables that match (NEWSDESK_*)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Pipeline = cfg.Pipeline.Normalize()

	for _, validate := range []func() error{
		cfg.Server.Validate,
		cfg.Pipeline.Validate,
		cfg.Storage.Redis.Validate,
		cfg.Storage.Postgres.Validate,
	} {
		if err := validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadConfig loads config from file and panics on error
func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return cfg
}
