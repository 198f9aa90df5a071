// ABOUTME: Config CLI commands
// ABOUTME: Shows effective settings and stores the access token

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/vkattach/internal/config"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show or change configuration",
	Annotations: map[string]string{skipSetup: "true"},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show effective configuration",
	Annotations: map[string]string{skipSetup: "true"},
	RunE:        runConfigShow,
}

var configSetTokenCmd = &cobra.Command{
	Use:         "set-token <token>",
	Short:       "Store the API access token",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipSetup: "true"},
	RunE:        runConfigSetToken,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetTokenCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fmt.Println("Configuration")
	fmt.Println("─────────────")
	fmt.Printf("Config:     %s\n", config.GetConfigPath())
	fmt.Printf("API:        %s (v%s)\n", cfg.GetAPIBaseURL(), cfg.GetAPIVersion())
	fmt.Printf("Rate limit: %g/s\n", cfg.GetRateLimit())
	fmt.Printf("Cache:      %s\n", cfg.GetCacheBackend())
	if cfg.GetCacheBackend() == config.CacheBadger {
		fmt.Printf("KV path:    %s (ttl %s)\n", cfg.GetKVPath(), cfg.GetCacheTTL())
	}

	fmt.Print("Token:      ")
	if cfg.IsConfigured() {
		color.Green("%s", mask(cfg.GetAccessToken()))
	} else {
		color.Yellow("not set")
	}
	return nil
}

func mask(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func runConfigSetToken(cmd *cobra.Command, args []string) error {
	cfg.AccessToken = args[0]
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	color.Green("Saved access token to %s", config.GetConfigPath())
	return nil
}
