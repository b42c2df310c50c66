package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/agromitra/agromitra/internal/db"
	"github.com/agromitra/agromitra/internal/db/migrations"
	"github.com/agromitra/agromitra/internal/dbpool"
)

func newInitCmd() *cobra.Command {
	var (
		initDBURL  string
		initOllama string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up AgroMitra CLI configuration",
		Long:  "Interactive setup wizard that creates ~/.agromitra/config.yaml and runs schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			nonInteractive := initDBURL != ""
			return runInit(initDBURL, initOllama, nonInteractive)
		},
	}

	cmd.Flags().StringVar(&initDBURL, "database-url", "", "PostgreSQL URL (non-interactive mode)")
	cmd.Flags().StringVar(&initOllama, "ollama-url", "", "Ollama URL (non-interactive mode)")
	return cmd
}

func runInit(dbURL, ollamaURL string, nonInteractive bool) error {
	if !nonInteractive {
		fmt.Println("\n  AgroMitra Setup")
		fmt.Println("  ───────────────")
		fmt.Println()

		reader := bufio.NewReader(os.Stdin)

		fmt.Print("  PostgreSQL URL [postgres://localhost:5432/agromitra]: ")
		line, _ := reader.ReadString('\n')
		dbURL = strings.TrimSpace(line)

		fmt.Print("  Ollama URL [http://localhost:11434]: ")
		line, _ = reader.ReadString('\n')
		ollamaURL = strings.TrimSpace(line)
	}

	if dbURL == "" {
		dbURL = "postgres://localhost:5432/agromitra"
	}
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}

	// Test connection and apply migrations.
	if !nonInteractive {
		fmt.Print("\n  Testing database... ")
	}

	if err := initDatabase(dbURL); err != nil {
		if !nonInteractive {
			fmt.Println("✗")
		}
		return fmt.Errorf("database setup failed: %w", err)
	}

	if !nonInteractive {
		fmt.Println("✓ Connected, schema ready")
	}

	cfgPath, err := writeConfig(dbURL, ollamaURL)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if nonInteractive {
		fmt.Printf("Config saved to %s\n", cfgPath)
	} else {
		fmt.Printf("\n  ✓ Config saved to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("  Next steps:")
		fmt.Println("    agromitra doctor                 # Full diagnostic check")
		fmt.Println("    agromitra ask weather --district Pune")
		fmt.Println("    agromitra --help                 # See all commands")
		fmt.Println()
	}

	return nil
}

// initDatabase pings the database and applies embedded migrations.
func initDatabase(dbURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)

	return db.RunMigrations(ctx, pool, log, migrations.FS)
}

func writeConfig(dbURL, ollamaURL string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".agromitra")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	cfg := configFile{
		DatabaseURL: dbURL,
		OllamaURL:   ollamaURL,
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", err
	}

	return cfgPath, nil
}
