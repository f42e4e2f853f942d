package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/irwinb/tradecouncil/internal/models"
)

// Config holds everything the application needs for a run: directories,
// LLM provider selection, engine limits, and collaborator endpoints.
type Config struct {
	ProjectDir string `json:"project_dir"`
	ResultsDir string `json:"results_dir"`
	DataDir    string `json:"data_dir"`

	LLMProvider   string `json:"llm_provider"`
	DeepThinkLLM  string `json:"deep_think_llm"`
	QuickThinkLLM string `json:"quick_think_llm"`
	BackendURL    string `json:"backend_url"`

	OpenAIAPIKey   string `json:"-"`
	DeepSeekAPIKey string `json:"-"`

	SelectedAnalysts []string `json:"selected_analysts"`

	MaxDebateRounds       int  `json:"max_debate_rounds"`
	MaxRiskRounds         int  `json:"max_risk_rounds"`
	MaxRecurLimit         int  `json:"max_recursion_limit"`
	DegradeOnAgentFailure bool `json:"degrade_on_agent_failure"`

	// RunDeadline bounds one full run; zero disables the deadline.
	RunDeadline time.Duration `json:"run_deadline"`

	// DisabledAnalysts maps market segment -> analysts unavailable for it,
	// typically because an upstream data source does not cover the segment.
	DisabledAnalysts map[string][]string `json:"disabled_analysts"`

	MemoryServiceURL string `json:"memory_service_url"`
	MemoryTopN       int    `json:"memory_top_n"`

	HistoryDBPath string `json:"history_db_path"`

	OnlineTools bool `json:"online_tools"`
	Debug       bool `json:"debug"`
}

// DefaultConfig builds the default configuration, then overlays .env and
// process environment values.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir: currentDir,
		ResultsDir: filepath.Join(currentDir, "results"),
		DataDir:    filepath.Join(currentDir, "data"),

		LLMProvider:   "deepseek",
		DeepThinkLLM:  "deepseek-reasoner",
		QuickThinkLLM: "deepseek-chat",
		BackendURL:    "",

		SelectedAnalysts: []string{"market", "fundamentals", "news", "sentiment"},

		MaxDebateRounds:       2,
		MaxRiskRounds:         1,
		MaxRecurLimit:         100,
		DegradeOnAgentFailure: true,
		RunDeadline:           0,

		// Social-sentiment coverage is unavailable for OTC subjects.
		DisabledAnalysts: map[string][]string{
			"otc": {"sentiment"},
		},

		MemoryTopN:    2,
		HistoryDBPath: filepath.Join(currentDir, "data", "history.db"),

		OnlineTools: true,
		Debug:       false,
	}

	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("DEEP_THINK_LLM"); val != "" {
		c.DeepThinkLLM = val
	}
	if val := os.Getenv("QUICK_THINK_LLM"); val != "" {
		c.QuickThinkLLM = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}

	if val := os.Getenv("SELECTED_ANALYSTS"); val != "" {
		c.SelectedAnalysts = splitList(val)
	}

	if val := os.Getenv("MAX_DEBATE_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxDebateRounds = v
		}
	}
	if val := os.Getenv("MAX_RISK_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRiskRounds = v
		}
	}
	if val := os.Getenv("MAX_RECURSION_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRecurLimit = v
		}
	}
	if val := os.Getenv("DEGRADE_ON_AGENT_FAILURE"); val != "" {
		if v, err := strconv.ParseBool(val); err == nil {
			c.DegradeOnAgentFailure = v
		}
	}
	if val := os.Getenv("RUN_DEADLINE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.RunDeadline = d
		}
	}

	if val := os.Getenv("MEMORY_SERVICE_URL"); val != "" {
		c.MemoryServiceURL = val
	}
	if val := os.Getenv("MEMORY_TOP_N"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MemoryTopN = v
		}
	}

	if val := os.Getenv("HISTORY_DB_PATH"); val != "" {
		c.HistoryDBPath = val
	}

	if val := os.Getenv("ONLINE_TOOLS"); val != "" {
		if v, err := strconv.ParseBool(val); err == nil {
			c.OnlineTools = v
		}
	}
	if val := os.Getenv("TRADECOUNCIL_DEBUG"); val != "" {
		if v, err := strconv.ParseBool(val); err == nil {
			c.Debug = v
		}
	}
}

// Validate checks everything that can be checked before a run starts.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "deepseek":
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLMProvider)
	}
	if len(c.SelectedAnalysts) == 0 {
		return fmt.Errorf("at least one analyst must be selected")
	}
	if _, err := c.Analysts(); err != nil {
		return err
	}
	if c.MaxDebateRounds < 0 {
		return fmt.Errorf("max debate rounds must be >= 0")
	}
	if c.MaxRiskRounds < 0 {
		return fmt.Errorf("max risk rounds must be >= 0")
	}
	if c.MaxRecurLimit <= 0 {
		return fmt.Errorf("max recursion limit must be > 0")
	}
	return nil
}

// Analysts parses the configured analyst names.
func (c *Config) Analysts() ([]models.AnalystKind, error) {
	kinds := make([]models.AnalystKind, 0, len(c.SelectedAnalysts))
	for _, name := range c.SelectedAnalysts {
		kind, err := models.ParseAnalystKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// DisabledKinds parses the per-segment exclusion table.
func (c *Config) DisabledKinds() (map[string][]models.AnalystKind, error) {
	out := make(map[string][]models.AnalystKind, len(c.DisabledAnalysts))
	for segment, names := range c.DisabledAnalysts {
		for _, name := range names {
			kind, err := models.ParseAnalystKind(name)
			if err != nil {
				return nil, fmt.Errorf("disabled analysts for segment %q: %w", segment, err)
			}
			out[segment] = append(out[segment], kind)
		}
	}
	return out, nil
}

// EnsureDirectories creates the results and data directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.ResultsDir, c.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
