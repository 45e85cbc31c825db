package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WebNaresh/expense-management/internal/providers"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show spendit status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	fmt.Printf("%s spendit Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	fmt.Printf("Config:    %s %s\n", cfgPath, yesNo(statErr == nil))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Model:     %s", cfg.Assistant.Model)
	if m := cfg.MatchProvider(""); m.Name != "" {
		fmt.Printf(" via %s", m.Name)
	}
	fmt.Println()
	fmt.Printf("Threshold: %.2f\n", cfg.Assistant.ConfidenceThreshold)
	fmt.Printf("Store:     %s %s\n", cfg.Store.Driver, storeHint(cfg.StoreDSN(), cfg.Store.Neo4j.URI, cfg.Store.Driver))
	fmt.Printf("Reminders: %s %s\n\n", yesNo(cfg.Reminders.Enabled), cfg.Reminders.Cron)

	fmt.Println("Providers:")
	for _, spec := range providers.PROVIDERS {
		p := cfg.ProviderByName(spec.Name)
		if p == nil {
			continue
		}
		label := spec.Label()
		switch {
		case spec.IsLocal:
			if p.APIBase != "" {
				fmt.Printf("  %-20s ✓ %s\n", label, p.APIBase)
			} else {
				fmt.Printf("  %-20s (not set)\n", label)
			}
		case p.APIKey != "":
			fmt.Printf("  %-20s ✓\n", label)
		default:
			fmt.Printf("  %-20s (not set)\n", label)
		}
	}
	return nil
}

func storeHint(dsn, neo4jURI, driver string) string {
	switch driver {
	case "neo4j":
		return neo4jURI
	case "postgres":
		return tokenHint(dsn)
	}
	return dsn
}
