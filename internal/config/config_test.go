package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DB.Host != "127.0.0.1" || cfg.DB.Port != 5432 || cfg.DB.Name != "olympics_tv" {
		t.Errorf("DB defaults = %+v", cfg.DB)
	}
	if cfg.Scraper.MaxTotalArticles != 12 || cfg.Scraper.FetchTimeout != 15*time.Second {
		t.Errorf("Scraper defaults = %+v", cfg.Scraper)
	}
	if cfg.Scheduler.PostEventWindow != 24*time.Hour {
		t.Errorf("Scheduler defaults = %+v", cfg.Scheduler)
	}
	if cfg.LLM.InputCostPerMTok != 3.0 || cfg.LLM.OutputCostPerMTok != 15.0 {
		t.Errorf("LLM rate defaults = %+v", cfg.LLM)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
db:
  host: db.internal
  name: olympics_prod
scraper:
  max_total_articles: 6
search:
  provider: tavily
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DB.Host != "db.internal" || cfg.DB.Name != "olympics_prod" {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.DB.Port != 5432 {
		t.Errorf("DB.Port = %d, unset keys should keep defaults", cfg.DB.Port)
	}
	if cfg.Scraper.MaxTotalArticles != 6 {
		t.Errorf("MaxTotalArticles = %d, want 6", cfg.Scraper.MaxTotalArticles)
	}
	if cfg.Search.Provider != "tavily" {
		t.Errorf("Provider = %q, want tavily", cfg.Search.Provider)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("db:\n  host: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DB_HOST", "from-env")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DB.Host != "from-env" {
		t.Errorf("DB.Host = %q, env should win over file", cfg.DB.Host)
	}
	if cfg.DB.Password != "secret" || cfg.LLM.APIKey != "sk-test" {
		t.Errorf("credentials not applied from env")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("db: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("Load() error = nil, want yaml error")
	}
}
