package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"medical-qa-service/pkg"
)

// Config holds every runtime setting the service needs. It is loaded once at
// startup, validated, and treated as immutable afterwards.
type Config struct {
	OpenAIAPIKey string  `yaml:"openai_api_key"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	MaxWorkers   int     `yaml:"max_workers"`
	Port         string  `yaml:"port"`

	// DraftingCategories names the categories that get an LLM-drafted answer.
	// CannedResponses supplies the short-circuit text for the rest; wording
	// is deployment data, not code.
	DraftingCategories []string          `yaml:"drafting_categories"`
	CannedResponses    map[string]string `yaml:"canned_responses"`
}

// Default returns the built-in settings: medical questions get drafts, the
// other categories get routing acknowledgements.
func Default() Config {
	return Config{
		Model:              "gpt-4o-mini",
		Temperature:        0.2,
		MaxTokens:          1024,
		MaxWorkers:         32,
		Port:               "8080",
		DraftingCategories: []string{string(pkg.CategoryMedical)},
		CannedResponses: map[string]string{
			string(pkg.CategoryTransport):  "Your question has been routed to the transportation coordination team. A coordinator will follow up with you shortly.",
			string(pkg.CategorySchedule):   "Your question has been routed to the scheduling team. They will confirm your appointment details shortly.",
			string(pkg.CategoryPaceCenter): "Your question has been routed to your PACE center staff. Someone from the center will get back to you.",
			string(pkg.CategoryTaxonomy):   "We could not determine the right team for your question. A staff member will review it and respond.",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides, then validates it. Path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file and default values with environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Temperature = float32(f)
		}
	}
	if v := os.Getenv("OPENAI_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxWorkers = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
}

// Validate checks the configuration once at startup. A missing credential or
// malformed field here is fatal; the service must not start with it.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY must be set")
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", c.MaxWorkers)
	}
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	for _, name := range c.DraftingCategories {
		if _, ok := pkg.ParseCategory(name); !ok {
			return fmt.Errorf("unknown drafting category %q", name)
		}
	}
	for name := range c.CannedResponses {
		if _, ok := pkg.ParseCategory(name); !ok {
			return fmt.Errorf("unknown canned response category %q", name)
		}
	}
	return nil
}

// Drafting returns the drafting categories as typed values.
func (c Config) Drafting() []pkg.QuestionCategory {
	out := make([]pkg.QuestionCategory, 0, len(c.DraftingCategories))
	for _, name := range c.DraftingCategories {
		if cat, ok := pkg.ParseCategory(name); ok {
			out = append(out, cat)
		}
	}
	return out
}

// Canned returns the canned responses keyed by typed category.
func (c Config) Canned() map[pkg.QuestionCategory]string {
	out := make(map[pkg.QuestionCategory]string, len(c.CannedResponses))
	for name, text := range c.CannedResponses {
		if cat, ok := pkg.ParseCategory(name); ok {
			out[cat] = text
		}
	}
	return out
}
