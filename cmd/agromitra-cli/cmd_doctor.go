package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/agromitra/agromitra/internal/dbpool"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, database, and the embedding service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor() error {
	fmt.Println("\nAgroMitra Doctor")
	fmt.Println("================")

	var results []checkResult

	// 1. Config file.
	_, cfgPath, cfgErr := loadConfigFile()
	if cfgErr != nil {
		results = append(results, checkResult{
			Name: "Config file", Passed: false,
			Detail: cfgPath,
			Hint:   "Run: agromitra init",
		})
	} else {
		results = append(results, checkResult{
			Name: "Config file", Passed: true,
			Detail: fmt.Sprintf("found (%s)", cfgPath),
		})
	}

	// Same resolution priority as the data commands.
	resolveConfig()

	// 2. Database URL.
	dbURL := appCfg.DatabaseURL.Value()
	if dbURL == "" {
		results = append(results, checkResult{
			Name: "Database URL", Passed: false,
			Hint: "Set --database-url, DATABASE_URL, or run agromitra init",
		})
	} else {
		results = append(results, checkResult{
			Name: "Database URL", Passed: true, Detail: "configured",
		})
	}

	// 3. Database reachable.
	if dbURL != "" {
		if err := doctorCheckDatabase(dbURL); err != nil {
			results = append(results, checkResult{
				Name: "Database reachable", Passed: false,
				Hint: fmt.Sprintf("Is PostgreSQL running? Error: %v", err),
			})
		} else {
			results = append(results, checkResult{
				Name: "Database reachable", Passed: true, Detail: "connected",
			})
		}
	}

	// 4. Embedding service.
	if err := doctorCheckOllama(appCfg.OllamaURL); err != nil {
		results = append(results, checkResult{
			Name: "Embedding service", Passed: false,
			Detail: appCfg.OllamaURL,
			Hint:   fmt.Sprintf("Is Ollama running? Use --embedder static for offline work. Error: %v", err),
		})
	} else {
		results = append(results, checkResult{
			Name: "Embedding service", Passed: true, Detail: appCfg.OllamaURL,
		})
	}

	// Print results.
	fmt.Println()
	allPassed := true
	for _, r := range results {
		if r.Passed {
			if r.Detail != "" {
				fmt.Printf("✅ %s: %s\n", r.Name, r.Detail)
			} else {
				fmt.Printf("✅ %s\n", r.Name)
			}
		} else {
			allPassed = false
			if r.Detail != "" {
				fmt.Printf("❌ %s: %s\n", r.Name, r.Detail)
			} else {
				fmt.Printf("❌ %s\n", r.Name)
			}
			if r.Hint != "" {
				fmt.Printf("   Hint: %s\n", r.Hint)
			}
		}
	}

	fmt.Println()
	if allPassed {
		fmt.Println("✅ All checks passed!")
	} else {
		fmt.Println("❌ Some checks failed.")
		return fmt.Errorf("doctor found issues")
	}

	return nil
}

func doctorCheckDatabase(dbURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	return pool.Ping(ctx)
}

func doctorCheckOllama(baseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
