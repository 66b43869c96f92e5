package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/petroserv/rag-server/chunker"
)

type ProviderConfig struct {
	Model  string `yaml:"model"`
	ApiKey string `yaml:"api_key"`
}

type Config struct {
	LogFile       string `yaml:"log"`
	DataDir       string `yaml:"data_dir"`
	CatalogDir    string `yaml:"catalog_dir"`
	InboxDir      string `yaml:"inbox_dir"`
	InboxCategory string `yaml:"inbox_category"`
	MergeEventsMs int    `yaml:"write_debounce_ms"`
	ServerAddr    string `yaml:"server_addr"`

	ChunkSize      int   `yaml:"chunk_size"`
	ChunkOverlap   int   `yaml:"chunk_overlap"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	Results int `yaml:"results"`

	// Pointers so an explicit 0 (no relevance floor) or 1.0 (boost disabled)
	// is distinguishable from an omitted key.
	MinRelevance     *float64            `yaml:"min_relevance"`
	LanguageBoost    *float64            `yaml:"language_boost"`
	CategoryBoost    *float64            `yaml:"category_boost"`
	CategoryKeywords map[string][]string `yaml:"category_keywords"`
	DefaultLanguage  string              `yaml:"default_language"`

	OpenAI *ProviderConfig `yaml:"open_ai"`
	Gemini *ProviderConfig `yaml:"gemini"`
}

func readConfig(cfgPath string) (*Config, error) {
	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(cfgFile)
	err = dec.Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = chunker.DefaultMaxChars
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = chunker.DefaultOverlap
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.Results == 0 {
		c.Results = 5
	}
	if c.MinRelevance == nil {
		c.MinRelevance = floatDefault(0.2)
	}
	if c.LanguageBoost == nil {
		c.LanguageBoost = floatDefault(1.2)
	}
	if c.CategoryBoost == nil {
		c.CategoryBoost = floatDefault(1.3)
	}
	if c.CategoryKeywords == nil {
		c.CategoryKeywords = map[string][]string{
			"petroleum_services": {"drilling", "petroleum", "oil", "gas"},
			"training_services":  {"training", "course", "certification"},
		}
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "en"
	}
	if c.InboxCategory == "" {
		c.InboxCategory = "general"
	}
	if c.MergeEventsMs == 0 {
		c.MergeEventsMs = 500
	}
}

func (c *Config) validate() error {
	if c.LogFile == "" {
		return errors.New("log is required")
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.ServerAddr == "" {
		return errors.New("server_addr is required")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if *c.MinRelevance < 0 {
		return errors.New("min_relevance must not be negative")
	}

	return nil
}

func floatDefault(v float64) *float64 {
	return &v
}
