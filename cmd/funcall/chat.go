package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"

	"github.com/funcall-ai/funcall/callbacks"
	"github.com/funcall-ai/funcall/orchestrator"
	"github.com/funcall-ai/funcall/pkg/llmfactory"
	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/funcall-ai/funcall/tools/mathtool"
)

var (
	systemPrompt string
	maxRounds    int
	oneShot      string
	verbose      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the model, dispatching tool calls automatically",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&systemPrompt, "system", "s", "", "System prompt")
	chatCmd.Flags().IntVar(&maxRounds, "max-rounds", orchestrator.DefaultMaxToolRounds, "Maximum tool dispatch rounds per message")
	chatCmd.Flags().StringVar(&oneShot, "message", "", "Send a single message and exit")
	chatCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newModel() (llms.Model, error) {
	if cfgFile != "" {
		f, err := llmfactory.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		if modelName != "" {
			return f.ModelByName(modelName)
		}
		return f.ModelByProvider(providerName)
	}

	// no config file, construct from flags and environment tokens
	return llmfactory.CreateLLM(&llmfactory.ProviderConfig{
		Name:         strings.ToLower(providerName),
		Provider:     providerName,
		DefaultModel: modelName,
	})
}

func runChat(_ *cobra.Command, _ []string) error {
	if verbose {
		xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	}

	model, err := newModel()
	if err != nil {
		return err
	}

	mathTools, err := mathtool.New()
	if err != nil {
		return err
	}

	opts := []orchestrator.Option{orchestrator.WithMaxToolRounds(maxRounds)}
	if verbose {
		opts = append(opts, orchestrator.WithCallback(callbacks.NewPrinter(os.Stderr, callbacks.ModeVerbose)))
	}

	orc := orchestrator.New(model, opts...)
	orc.RegisterTools(mathTools...)
	if systemPrompt != "" {
		orc.SetSystemPrompt(systemPrompt)
	}

	ctx := context.Background()

	if oneShot != "" {
		reply, err := orc.SendUserMessage(ctx, oneShot)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	}

	fmt.Printf("Chatting with %s (%s). Type 'exit' to quit.\n", model.GetName(), model.GetProviderType())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		reply, err := orc.SendUserMessage(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			continue
		}
		fmt.Printf("AI: %s\n", reply)
	}
}
