// Package main provides the entry point for the contact enrichment agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "enrich_agent",
	Short: "Contact enrichment agent",
	Long:  "Contact enrichment agent keeps CRM contact descriptions current by checking LinkedIn profiles and recent posts, regenerating stale descriptions with an LLM, and writing them back to Airtable.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
