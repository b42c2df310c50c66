package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agromitra/agromitra/internal/config"
	"github.com/agromitra/agromitra/internal/dbpool"
	"github.com/agromitra/agromitra/internal/embedding"
	"github.com/agromitra/agromitra/internal/engine"
	"github.com/agromitra/agromitra/internal/store"
)

// Build-time variables set via ldflags.
var (
	version   = "0.3.0"
	commit    = ""
	buildDate = ""
)

var (
	flagDBURL    string
	flagOllama   string
	flagModel    string
	flagEmbedder string
	flagFmt      string

	appCfg         *config.Config
	appPool        *dbpool.Pool
	appEmbedder    store.Embedder
	knowledgeStore *store.KnowledgeStore
	graphStore     *store.GraphStore
	metricStore    *store.MetricStore
	advisor        *engine.Engine
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("agromitra version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("agromitra version %s-dev", version)
}

// configFile is ~/.agromitra/config.yaml.
type configFile struct {
	DatabaseURL string `yaml:"database_url"`
	OllamaURL   string `yaml:"ollama_url"`
	Model       string `yaml:"embedding_model"`
	Embedder    string `yaml:"embedder"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "agromitra",
		Short:   "AgroMitra CLI — agricultural knowledge and advisory core",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			connect()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appPool != nil {
				appPool.Close()
			}
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagDBURL, "database-url", "", "PostgreSQL URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama-url", "", "Ollama URL (env: OLLAMA_URL)")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Embedding model (env: EMBEDDING_MODEL)")
	rootCmd.PersistentFlags().StringVar(&flagEmbedder, "embedder", "ollama", "Embedder: ollama|static")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	initCmd := newInitCmd()
	initCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip store setup
	doctorCmd := newDoctorCmd()
	doctorCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip store setup

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(newNodeCmd())
	rootCmd.AddCommand(newEdgeCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newKnowledgeCmd())
	rootCmd.AddCommand(newMetricCmd())
	rootCmd.AddCommand(newAskCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig builds the effective configuration. Flags take
// precedence, then env, then ~/.agromitra/config.yaml, then defaults.
func resolveConfig() {
	cfg, err := config.FromEnv()
	if err != nil {
		fatal("reading environment", err)
	}

	if flagDBURL != "" {
		cfg.DatabaseURL = config.Secret(flagDBURL)
	}
	if flagOllama != "" {
		cfg.OllamaURL = flagOllama
	}
	if flagModel != "" {
		cfg.EmbeddingModel = flagModel
	}

	if file, _, err := loadConfigFile(); err == nil {
		if cfg.DatabaseURL.Value() == "" {
			cfg.DatabaseURL = config.Secret(file.DatabaseURL)
		}
		if cfg.OllamaURL == "" {
			cfg.OllamaURL = file.OllamaURL
		}
		if cfg.EmbeddingModel == "" {
			cfg.EmbeddingModel = file.Model
		}
		if file.Embedder != "" && flagEmbedder == "ollama" {
			flagEmbedder = file.Embedder
		}
	}

	cfg.ApplyDefaults()
	appCfg = cfg
}

func loadConfigFile() (*configFile, string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, "", err
	}

	cfgPath := filepath.Join(home, ".agromitra", "config.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	return &cfg, cfgPath, nil
}

// connect builds the pool, stores and engine shared by all data commands.
func connect() {
	if appCfg.DatabaseURL.Value() == "" {
		fmt.Fprintln(os.Stderr, "Error: no database configured. Set --database-url, DATABASE_URL, or run: agromitra init")
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(io.Discard) // CLI output stays on stdout
	if lvl, err := logrus.ParseLevel(appCfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	pool, err := dbpool.NewPool(context.Background(), appCfg.DatabaseURL.Value())
	if err != nil {
		fatal("connect to database", err)
	}
	appPool = pool

	base := store.Base{Pool: pool, Log: log, Concurrency: appCfg.QueryConcurrency}

	appEmbedder = embedding.Static{}
	if flagEmbedder == "ollama" {
		appEmbedder = embedding.NewOllamaEmbedder(appCfg.OllamaURL, appCfg.EmbeddingModel)
	}

	knowledgeStore = store.NewKnowledgeStore(base, appEmbedder)
	graphStore = store.NewGraphStore(base)
	metricStore = store.NewMetricStore(base)
	advisor = engine.New(metricStore, graphStore, knowledgeStore, log, base.Concurrency)
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
