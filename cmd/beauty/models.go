package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/llm"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported model-name prefixes and their providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := llm.NewRegistry()
			fmt.Printf("%-15s %-12s %s\n", "Prefix", "Provider", "API key")
			for _, prefix := range registry.Prefixes() {
				p, _ := registry.Resolve(prefix)
				envKey := p.EnvKey
				if envKey == "" {
					envKey = "(none)"
				}
				fmt.Printf("%-15s %-12s %s\n", prefix, p.Name, envKey)
			}
			return nil
		},
	}
}
