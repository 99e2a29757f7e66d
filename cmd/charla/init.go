package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter config.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = args[0]
			}
			dir = filepath.Clean(dir)

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			cfgPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}

			body, err := yaml.Marshal(starterConfig())
			if err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, body, 0o644); err != nil {
				return err
			}

			fmt.Printf("initialized %s\n", cfgPath)
			return nil
		},
	}

	return cmd
}

func starterConfig() map[string]any {
	return map[string]any{
		"llm": map[string]any{
			"provider":        "gemini",
			"model":           "gemini-2.0-flash",
			"api_key":         "",
			"request_timeout": "90s",
		},
		"telegram": map[string]any{
			"bot_token":    "",
			"poll_timeout": "30s",
		},
		"conversation": map[string]any{
			"max_history": 10,
			"timeout":     "30m",
		},
		"agent": map[string]any{
			"max_steps":     3,
			"parse_retries": 1,
		},
		"weather": map[string]any{
			"api_key":      "",
			"default_city": "Madrid",
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
		},
	}
}
