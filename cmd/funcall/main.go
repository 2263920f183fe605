// Package main implements the funcall CLI: an interactive chat loop with
// tool calling backed by any of the configured LLM providers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	providerName string
	modelName    string
)

var rootCmd = &cobra.Command{
	Use:   "funcall",
	Short: "funcall — LLM chat with function calling",
	Long:  "funcall is a multi-provider LLM chat client with automatic tool dispatch.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "cfg", "", "Path to the providers config file")
	rootCmd.PersistentFlags().StringVarP(&providerName, "provider", "p", "OPENAI", "Provider type: OPENAI|GROQ|ANTHROPIC|GOOGLEAI")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model name, defaults to the provider's default")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(toolsCmd)
}
