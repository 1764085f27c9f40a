package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the pipeline needs. It is built once at startup
// and passed to component constructors; nothing reads it through globals.
type Config struct {
	DB        DBConfig        `yaml:"db"`
	Search    SearchConfig    `yaml:"search"`
	LLM       LLMConfig       `yaml:"llm"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// DBConfig is the Postgres connection configuration.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// SearchConfig selects and configures the web-search provider.
type SearchConfig struct {
	Provider string        `yaml:"provider"` // "serpapi" or "tavily"
	SerpAPI  SerpAPIConfig `yaml:"serpapi"`
	Tavily   TavilyConfig  `yaml:"tavily"`
}

// SerpAPIConfig holds SerpAPI credentials.
type SerpAPIConfig struct {
	APIKey string `yaml:"api_key"`
}

// TavilyConfig holds Tavily credentials.
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// LLMConfig configures the text generator endpoint and pricing.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	// Per-million-token rates used for the linear cost estimate.
	InputCostPerMTok  float64 `yaml:"input_cost_per_mtok"`
	OutputCostPerMTok float64 `yaml:"output_cost_per_mtok"`
}

// ScraperConfig bounds the source scraper.
type ScraperConfig struct {
	MaxArticlesPerQuery int           `yaml:"max_articles_per_query"`
	MaxTotalArticles    int           `yaml:"max_total_articles"`
	FetchTimeout        time.Duration `yaml:"fetch_timeout"`
	FetchDelay          time.Duration `yaml:"fetch_delay"`
	MinArticleLength    int           `yaml:"min_article_length"`
}

// SchedulerConfig sets the eligibility windows for both commentary types.
type SchedulerConfig struct {
	PostEventWindow time.Duration `yaml:"post_event_window"`
	PreEventWindow  time.Duration `yaml:"pre_event_window"`
}

// LogConfig configures the shared logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads the yaml config at path, after loading a local .env file if
// one exists. Credentials can be overridden through the environment so
// they never need to live in the config file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DB: DBConfig{
			Host: "127.0.0.1",
			Port: 5432,
			Name: "olympics_tv",
		},
		Search: SearchConfig{Provider: "serpapi"},
		LLM: LLMConfig{
			Model:             "claude-sonnet-4-20250514",
			InputCostPerMTok:  3.0,
			OutputCostPerMTok: 15.0,
		},
		Scraper: ScraperConfig{
			MaxArticlesPerQuery: 3,
			MaxTotalArticles:    12,
			FetchTimeout:        15 * time.Second,
			FetchDelay:          time.Second,
			MinArticleLength:    200,
		},
		Scheduler: SchedulerConfig{
			PostEventWindow: 24 * time.Hour,
			PreEventWindow:  24 * time.Hour,
		},
		Log: LogConfig{Level: "info"},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.DB.Port = p
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DB.Name = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.DB.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("SERPAPI_KEY"); v != "" {
		cfg.Search.SerpAPI.APIKey = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		cfg.Search.Tavily.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
}
