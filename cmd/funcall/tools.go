package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funcall-ai/funcall/tools/mathtool"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the registered tools and their parameter schemas",
	RunE:  runTools,
}

func runTools(_ *cobra.Command, _ []string) error {
	mathTools, err := mathtool.New()
	if err != nil {
		return err
	}

	for _, tool := range mathTools {
		params, err := json.MarshalIndent(tool.Parameters(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n%s\n\n", tool.Name(), tool.Description(), params)
	}
	return nil
}
