// Package config loads and validates the process-wide configuration surface
// spec.md 6 enumerates: DB pool parameters, model identity, scoring weights,
// worker counts, thresholds, and file paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration struct, populated by Load.
type Config struct {
	App         App         `mapstructure:"app"`
	Database    Database    `mapstructure:"database"`
	LLM         LLM         `mapstructure:"llm"`
	Scoring     Scoring     `mapstructure:"scoring"`
	Pipeline    Pipeline    `mapstructure:"pipeline"`
	Files       Files       `mapstructure:"files"`
	Downstream  Downstream  `mapstructure:"downstream"`
}

// App holds general process configuration.
type App struct {
	LogLevel string `mapstructure:"log_level"`
}

// Database holds PersistenceStore's pool target, per spec.md 5's "one
// database connection pool (min 1, max 10 by default)".
type Database struct {
	ConnectionString string `mapstructure:"connection_string"`
	MaxOpenConns     int    `mapstructure:"max_open_conns"`
	MaxIdleConns     int    `mapstructure:"max_idle_conns"`
}

// LLM holds the shared text/embedding client's identity and timeouts.
type LLM struct {
	Model                 string        `mapstructure:"model"`
	EmbeddingModel        string        `mapstructure:"embedding_model"`
	EmbeddingDimensions   int32         `mapstructure:"embedding_dimensions"`
	NERModelName          string        `mapstructure:"ner_model_name"`
	Timeout               time.Duration `mapstructure:"timeout"`
}

// Scoring holds C7's weight configuration and thresholds, and C8's cutoff.
type Scoring struct {
	SemanticWeight       float64 `mapstructure:"semantic_weight"`
	EntityWeight         float64 `mapstructure:"entity_weight"`
	TemporalWeight       float64 `mapstructure:"temporal_weight"`
	InteractionThreshold float64 `mapstructure:"interaction_threshold"`
	KNeighbors           int     `mapstructure:"k_neighbors"`
}

// Pipeline holds Orchestrator scheduling parameters.
type Pipeline struct {
	MaxWorkers            int           `mapstructure:"max_workers"`
	NewsBatchSize         int           `mapstructure:"news_batch_size"`
	MaxClusters           int           `mapstructure:"max_clusters"`
	HistoricalWindowDays  int           `mapstructure:"historical_window_days"`
	FetchTimeout          time.Duration `mapstructure:"fetch_timeout"`
	LLMTimeout            time.Duration `mapstructure:"llm_timeout"`
	DBTimeout             time.Duration `mapstructure:"db_timeout"`
}

// Files holds the on-disk rule/prompt inputs loaded once at startup.
type Files struct {
	GazetteerPath   string `mapstructure:"gazetteer_path"`
	EventRulesPath  string `mapstructure:"event_rules_path"`
	AssetRulesPath  string `mapstructure:"asset_rules_path"`
	SurprisePath    string `mapstructure:"surprise_synonyms_path"`
	PromptsDir      string `mapstructure:"prompts_dir"`
	MigrationsDir   string `mapstructure:"migrations_dir"`
}

// Downstream holds the external submission target.
type Downstream struct {
	SubmitURL string `mapstructure:"submit_url"`
}

// Default returns the configuration spec.md 6 lists as defaults.
func Default() Config {
	return Config{
		App: App{LogLevel: "info"},
		Database: Database{
			ConnectionString: "postgres://localhost:5432/storyengine?sslmode=disable",
			MaxOpenConns:     10,
			MaxIdleConns:     1,
		},
		LLM: LLM{
			Model:               "gemini-flash-lite-latest",
			EmbeddingModel:      "gemini-embedding-001",
			EmbeddingDimensions: 768,
			NERModelName:        "gazetteer-v1",
			Timeout:             30 * time.Second,
		},
		Scoring: Scoring{
			SemanticWeight:       0.50,
			EntityWeight:         0.30,
			TemporalWeight:       0.20,
			InteractionThreshold: 0.65,
			KNeighbors:           10,
		},
		Pipeline: Pipeline{
			MaxWorkers:           5,
			NewsBatchSize:        100,
			MaxClusters:          0, // 0 = unbounded
			HistoricalWindowDays: 14,
			FetchTimeout:         10 * time.Second,
			LLMTimeout:           30 * time.Second,
			DBTimeout:            30 * time.Second,
		},
		Files: Files{
			GazetteerPath:  "rules/gazetteer.yaml",
			EventRulesPath: "rules/event_rules.yaml",
			AssetRulesPath: "rules/asset_rules.yaml",
			SurprisePath:   "rules/surprise_synonyms.yaml",
			PromptsDir:     "prompts",
			MigrationsDir:  "migrations",
		},
	}
}

// Load reads configuration from (in order of increasing precedence) the
// built-in defaults, a YAML config file, a .env file, and the environment,
// mirroring the teacher's initConfig() search-path-then-AutomaticEnv order.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("storyengine")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	v.SetEnvPrefix("STORYENGINE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Database.ConnectionString == "" {
		return nil, fmt.Errorf("database.connection_string is required")
	}

	cfg.Files.GazetteerPath = filepath.Clean(cfg.Files.GazetteerPath)
	cfg.Files.EventRulesPath = filepath.Clean(cfg.Files.EventRulesPath)
	cfg.Files.AssetRulesPath = filepath.Clean(cfg.Files.AssetRulesPath)
	cfg.Files.SurprisePath = filepath.Clean(cfg.Files.SurprisePath)

	return &cfg, nil
}
